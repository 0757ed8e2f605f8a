package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/alimgiray/mailscope/internal/models"
)

// EmailRepository persists the raw emails of a batch and the processed
// results. Subscription info is stored as a JSON column; position preserves
// input order so results always come back index-aligned with the upload.
type EmailRepository struct {
	db *sql.DB
}

func NewEmailRepository(db *sql.DB) *EmailRepository {
	return &EmailRepository{db: db}
}

// SaveRawEmails stores the raw emails of a batch in input order
func (r *EmailRepository) SaveRawEmails(batchID string, emails []models.RawEmail) error {
	query := `
		INSERT INTO raw_emails (id, batch_id, position, subject, body, snippet, from_address, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for i, email := range emails {
		_, err := tx.Exec(query,
			uuid.New().String(), batchID, i,
			email.Subject, email.Body, email.Snippet, email.From, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRawEmailsByBatchID retrieves the raw emails of a batch in input order
func (r *EmailRepository) GetRawEmailsByBatchID(batchID string) ([]models.RawEmail, error) {
	query := `
		SELECT subject, body, snippet, from_address
		FROM raw_emails WHERE batch_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []models.RawEmail
	for rows.Next() {
		var email models.RawEmail
		if err := rows.Scan(&email.Subject, &email.Body, &email.Snippet, &email.From); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}

// SaveProcessedEmails stores the processed results of a batch in input order
func (r *EmailRepository) SaveProcessedEmails(batchID string, processed []models.ProcessedEmail) error {
	query := `
		INSERT INTO processed_emails (
			id, batch_id, position, subject, from_address, body_length,
			subscription_info, extraction_error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for i, email := range processed {
		var infoJSON *string
		if email.SubscriptionInfo != nil {
			data, err := json.Marshal(email.SubscriptionInfo)
			if err != nil {
				return err
			}
			s := string(data)
			infoJSON = &s
		}

		_, err := tx.Exec(query,
			uuid.New().String(), batchID, i,
			email.Subject, email.From, email.BodyLength,
			infoJSON, email.ExtractionError, now,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetProcessedEmailsByBatchID retrieves processed results in input order
func (r *EmailRepository) GetProcessedEmailsByBatchID(batchID string) ([]models.ProcessedEmail, error) {
	query := `
		SELECT subject, from_address, body_length, subscription_info, extraction_error
		FROM processed_emails WHERE batch_id = ?
		ORDER BY position ASC
	`

	rows, err := r.db.Query(query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var processed []models.ProcessedEmail
	for rows.Next() {
		var email models.ProcessedEmail
		var infoJSON *string
		if err := rows.Scan(&email.Subject, &email.From, &email.BodyLength, &infoJSON, &email.ExtractionError); err != nil {
			return nil, err
		}
		if infoJSON != nil {
			var info models.SubscriptionInfo
			if err := json.Unmarshal([]byte(*infoJSON), &info); err != nil {
				return nil, err
			}
			email.SubscriptionInfo = &info
		}
		processed = append(processed, email)
	}

	return processed, rows.Err()
}
