package repositories

import (
	"database/sql"
	"time"

	"github.com/alimgiray/mailscope/internal/models"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch
func (r *BatchRepository) Create(batch *models.Batch) error {
	query := `
		INSERT INTO batches (
			id, status, email_count, error_message, started_at, completed_at,
			worker_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		batch.ID, batch.Status, batch.EmailCount, batch.ErrorMessage,
		batch.StartedAt, batch.CompletedAt, batch.WorkerID,
		batch.CreatedAt, batch.UpdatedAt,
	)

	return err
}

// GetByID retrieves a batch by ID
func (r *BatchRepository) GetByID(id string) (*models.Batch, error) {
	query := `
		SELECT id, status, email_count, error_message, started_at, completed_at,
			   worker_id, created_at, updated_at
		FROM batches WHERE id = ?
	`

	batch := &models.Batch{}
	err := r.db.QueryRow(query, id).Scan(
		&batch.ID, &batch.Status, &batch.EmailCount, &batch.ErrorMessage,
		&batch.StartedAt, &batch.CompletedAt, &batch.WorkerID,
		&batch.CreatedAt, &batch.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return batch, nil
}

// Update updates an existing batch
func (r *BatchRepository) Update(batch *models.Batch) error {
	query := `
		UPDATE batches SET
			status = ?, email_count = ?, error_message = ?, started_at = ?,
			completed_at = ?, worker_id = ?, updated_at = ?
		WHERE id = ?
	`

	batch.UpdatedAt = time.Now()
	_, err := r.db.Exec(query,
		batch.Status, batch.EmailCount, batch.ErrorMessage, batch.StartedAt,
		batch.CompletedAt, batch.WorkerID, batch.UpdatedAt, batch.ID,
	)

	return err
}

// GetLatestCompleted retrieves the most recently completed batch
func (r *BatchRepository) GetLatestCompleted() (*models.Batch, error) {
	query := `
		SELECT id, status, email_count, error_message, started_at, completed_at,
			   worker_id, created_at, updated_at
		FROM batches WHERE status = ?
		ORDER BY completed_at DESC LIMIT 1
	`

	batch := &models.Batch{}
	err := r.db.QueryRow(query, models.BatchStatusCompleted).Scan(
		&batch.ID, &batch.Status, &batch.EmailCount, &batch.ErrorMessage,
		&batch.StartedAt, &batch.CompletedAt, &batch.WorkerID,
		&batch.CreatedAt, &batch.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return batch, nil
}

// ClaimPending atomically claims the oldest pending batch for a worker.
// Returns sql.ErrNoRows via GetByID semantics when nothing is pending.
func (r *BatchRepository) ClaimPending(workerID string) (*models.Batch, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT id, status, email_count, error_message, started_at, completed_at,
			   worker_id, created_at, updated_at
		FROM batches WHERE status = ?
		ORDER BY created_at ASC LIMIT 1
	`

	batch := &models.Batch{}
	err = tx.QueryRow(query, models.BatchStatusPending).Scan(
		&batch.ID, &batch.Status, &batch.EmailCount, &batch.ErrorMessage,
		&batch.StartedAt, &batch.CompletedAt, &batch.WorkerID,
		&batch.CreatedAt, &batch.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	batch.MarkStarted()
	batch.WorkerID = &workerID
	batch.UpdatedAt = time.Now()

	updateQuery := `
		UPDATE batches SET status = ?, started_at = ?, worker_id = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := tx.Exec(updateQuery,
		batch.Status, batch.StartedAt, batch.WorkerID, batch.UpdatedAt,
		batch.ID, models.BatchStatusPending,
	)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Another worker claimed it between SELECT and UPDATE
		return nil, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return batch, nil
}
