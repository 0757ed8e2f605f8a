package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/mailscope/internal/services"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
}

func NewSettingsHandler(settingsService *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetOutputDirectory returns the directory result files are written to
func (h *SettingsHandler) GetOutputDirectory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"output_directory": h.settingsService.GetOutputDirectory(),
	})
}

// SetOutputDirectory validates and persists a new output directory
func (h *SettingsHandler) SetOutputDirectory(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path is required"})
		return
	}

	absPath, err := h.settingsService.SetOutputDirectory(req.Path)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"output_directory": absPath})
}
