package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus represents the status of a processing batch
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusInProgress BatchStatus = "in-progress"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// Batch represents one submitted set of raw emails and its processing state
type Batch struct {
	ID           string      `json:"id"`
	Status       BatchStatus `json:"status"`
	EmailCount   int         `json:"email_count"`
	ErrorMessage *string     `json:"error_message"`
	StartedAt    *time.Time  `json:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at"`
	WorkerID     *string     `json:"worker_id"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewBatch creates a new Batch with a generated UUID
func NewBatch(emailCount int) *Batch {
	now := time.Now()
	return &Batch{
		ID:         uuid.New().String(),
		Status:     BatchStatusPending,
		EmailCount: emailCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsPending checks if the batch is waiting to be processed
func (b *Batch) IsPending() bool {
	return b.Status == BatchStatusPending
}

// IsCompleted checks if the batch finished processing
func (b *Batch) IsCompleted() bool {
	return b.Status == BatchStatusCompleted
}

// MarkStarted marks the batch as in progress
func (b *Batch) MarkStarted() {
	now := time.Now()
	b.Status = BatchStatusInProgress
	b.StartedAt = &now
}

// MarkCompleted marks the batch as completed
func (b *Batch) MarkCompleted() {
	now := time.Now()
	b.Status = BatchStatusCompleted
	b.CompletedAt = &now
}

// MarkFailed marks the batch as failed
func (b *Batch) MarkFailed() {
	now := time.Now()
	b.Status = BatchStatusFailed
	b.CompletedAt = &now
}

// SetError sets an error message for the batch
func (b *Batch) SetError(message string) {
	b.ErrorMessage = &message
}
