package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/internal/services"
)

type AnalyticsHandler struct {
	batchService     *services.BatchService
	analyticsService *services.AnalyticsService
	exportService    *services.ExportService
}

func NewAnalyticsHandler(
	batchService *services.BatchService,
	analyticsService *services.AnalyticsService,
	exportService *services.ExportService,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		batchService:     batchService,
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetAnalytics recomputes the analytics snapshot from the stored processed
// emails of a batch. Without a batch_id it serves the most recently
// completed batch. Snapshots are never cached or incrementally updated.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	batch, processed, ok := h.loadBatchResults(c)
	if !ok {
		return
	}

	snapshot := h.analyticsService.ComputeSnapshot(processed)

	c.JSON(http.StatusOK, gin.H{
		"batch_id":  batch.ID,
		"analytics": snapshot,
	})
}

// ExportAnalytics serves the analytics snapshot of a batch as an Excel file
func (h *AnalyticsHandler) ExportAnalytics(c *gin.Context) {
	batch, processed, ok := h.loadBatchResults(c)
	if !ok {
		return
	}

	snapshot := h.analyticsService.ComputeSnapshot(processed)

	buf, err := h.exportService.ExportSnapshot(snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	filename := fmt.Sprintf("analytics_%s_%s.xlsx", batch.ID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// loadBatchResults resolves the target batch and loads its ordered results
func (h *AnalyticsHandler) loadBatchResults(c *gin.Context) (*models.Batch, []models.ProcessedEmail, bool) {
	batchID := c.Query("batch_id")

	var batch *models.Batch
	var err error
	if batchID != "" {
		batch, err = h.batchService.GetBatch(batchID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return nil, nil, false
		}
	} else {
		batch, err = h.batchService.GetLatestCompletedBatch()
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No completed batches yet"})
			return nil, nil, false
		}
	}

	if !batch.IsCompleted() {
		c.JSON(http.StatusConflict, gin.H{"error": "Batch is not completed yet"})
		return nil, nil, false
	}

	processed, err := h.batchService.GetProcessedEmails(batch.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load batch results"})
		return nil, nil, false
	}

	return batch, processed, true
}
