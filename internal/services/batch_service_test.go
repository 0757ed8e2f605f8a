package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/internal/repositories"
)

// newTestDB opens an in-memory database with the full schema applied
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// A single connection keeps every statement on the same in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return db
}

func newTestBatchService(t *testing.T, db *sql.DB) (*BatchService, *repositories.BatchRepository) {
	t.Helper()

	batchRepo := repositories.NewBatchRepository(db)
	emailRepo := repositories.NewEmailRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	processor := newTestProcessor(newMockExtractor(), 2)
	analytics := NewAnalyticsService(NewDedupService())
	settings := NewSettingsService(settingsRepo, t.TempDir())

	return NewBatchService(batchRepo, emailRepo, processor, analytics, settings), batchRepo
}

func TestSynchronousBatchNotClaimableByWorkers(t *testing.T) {
	db := newTestDB(t)
	svc, batchRepo := newTestBatchService(t, db)

	emails := []models.RawEmail{
		{Subject: "Netflix receipt", Body: "<p>receipt</p>"},
		{Subject: "Spotify invoice", Body: "<p>invoice</p>"},
	}

	batch, err := svc.CreateBatch(emails, models.BatchStatusInProgress)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	assert.Equal(t, models.BatchStatusInProgress, batch.Status)
	assert.NotNil(t, batch.StartedAt)

	// A polling worker must never see this batch
	_, err = batchRepo.ClaimPending("extraction-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	processed, snapshot, err := svc.ProcessBatch(context.Background(), batch, emails)
	if err != nil {
		t.Fatalf("failed to process batch: %v", err)
	}
	assert.Len(t, processed, 2)
	assert.Equal(t, 2, snapshot.TotalEmails)
	assert.Equal(t, models.BatchStatusCompleted, batch.Status)

	// Exactly one stored result row per input email
	stored, err := svc.GetProcessedEmails(batch.ID)
	assert.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestAsyncBatchClaimedExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc, batchRepo := newTestBatchService(t, db)

	emails := []models.RawEmail{{Subject: "Netflix receipt", Body: "<p>receipt</p>"}}
	batch, err := svc.CreateBatch(emails, models.BatchStatusPending)
	if err != nil {
		t.Fatalf("failed to create batch: %v", err)
	}
	assert.Equal(t, models.BatchStatusPending, batch.Status)

	claimed, err := batchRepo.ClaimPending("extraction-1")
	assert.NoError(t, err)
	assert.Equal(t, batch.ID, claimed.ID)
	assert.Equal(t, models.BatchStatusInProgress, claimed.Status)

	// A second worker finds nothing left to claim
	_, err = batchRepo.ClaimPending("extraction-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
