package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/internal/services"
)

type EmailHandler struct {
	batchService *services.BatchService
}

func NewEmailHandler(batchService *services.BatchService) *EmailHandler {
	return &EmailHandler{batchService: batchService}
}

// ProcessEmails handles a synchronous upload-and-process request: the
// uploaded JSON file is validated, the whole batch runs through the pipeline
// and the full results come back in the response.
func (h *EmailHandler) ProcessEmails(c *gin.Context) {
	emails, ok := h.readBatch(c)
	if !ok {
		return
	}

	// Created in progress, not pending, so background workers never claim it
	batch, err := h.batchService.CreateBatch(emails, models.BatchStatusInProgress)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch"})
		return
	}

	processed, snapshot, err := h.batchService.ProcessBatch(c.Request.Context(), batch, emails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process batch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch_id":         batch.ID,
		"processed_emails": processed,
		"analytics":        snapshot,
	})
}

// ProcessEmailsAsync accepts the upload, stores the batch as pending and
// returns immediately; a background worker picks it up.
func (h *EmailHandler) ProcessEmailsAsync(c *gin.Context) {
	emails, ok := h.readBatch(c)
	if !ok {
		return
	}

	batch, err := h.batchService.CreateBatch(emails, models.BatchStatusPending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create batch"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batch.ID,
		"status":   batch.Status,
	})
}

// GetBatch returns batch status and, once completed, the ordered results
func (h *EmailHandler) GetBatch(c *gin.Context) {
	id := c.Param("id")

	batch, err := h.batchService.GetBatch(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}

	response := gin.H{"batch": batch}
	if batch.IsCompleted() {
		processed, err := h.batchService.GetProcessedEmails(batch.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load batch results"})
			return
		}
		response["processed_emails"] = processed
	}

	c.JSON(http.StatusOK, response)
}

// readBatch reads the uploaded file (or raw JSON body) and validates it
// structurally. Validation failure writes a 400 and returns ok=false before
// any processing starts.
func (h *EmailHandler) readBatch(c *gin.Context) ([]models.RawEmail, bool) {
	var content []byte

	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		content, err = io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return nil, false
		}
	} else {
		// Also accept the array directly as the request body
		content, err = io.ReadAll(c.Request.Body)
		if err != nil || len(content) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file upload or request body"})
			return nil, false
		}
	}

	emails, err := ValidateBatch(content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	return emails, true
}

// ValidateBatch checks the structural contract of an uploaded batch: a JSON
// array of objects, each carrying at least one of subject/body. Missing
// optional fields default to empty strings; a malformed entry rejects the
// whole batch before processing starts.
func ValidateBatch(content []byte) ([]models.RawEmail, error) {
	var rawEntries []json.RawMessage
	if err := json.Unmarshal(content, &rawEntries); err != nil {
		return nil, fmt.Errorf("request body must be a JSON array of email objects")
	}

	emails := make([]models.RawEmail, 0, len(rawEntries))
	for i, entry := range rawEntries {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(entry, &fields); err != nil {
			return nil, fmt.Errorf("entry %d is not an object", i)
		}

		_, hasSubject := fields["subject"]
		_, hasBody := fields["body"]
		if !hasSubject && !hasBody {
			return nil, fmt.Errorf("entry %d is missing both subject and body", i)
		}

		var email models.RawEmail
		if err := json.Unmarshal(entry, &email); err != nil {
			return nil, fmt.Errorf("entry %d has invalid field types", i)
		}
		emails = append(emails, email)
	}

	return emails, nil
}
