package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alimgiray/mailscope/internal/models"
	"github.com/alimgiray/mailscope/internal/repositories"
	"github.com/alimgiray/mailscope/pkg/logger"
)

// BatchService owns the batch lifecycle: it runs the processing pipeline,
// persists raw and processed emails, and writes the result documents to the
// configured output directory.
type BatchService struct {
	batchRepo       *repositories.BatchRepository
	emailRepo       *repositories.EmailRepository
	processor       *EmailProcessorService
	analytics       *AnalyticsService
	settingsService *SettingsService
}

func NewBatchService(
	batchRepo *repositories.BatchRepository,
	emailRepo *repositories.EmailRepository,
	processor *EmailProcessorService,
	analytics *AnalyticsService,
	settingsService *SettingsService,
) *BatchService {
	return &BatchService{
		batchRepo:       batchRepo,
		emailRepo:       emailRepo,
		processor:       processor,
		analytics:       analytics,
		settingsService: settingsService,
	}
}

// CreateBatch stores a new batch along with its raw emails. The synchronous
// path creates the batch already in progress so polling workers never see it
// as claimable; the async path creates it pending for a worker to pick up.
func (s *BatchService) CreateBatch(emails []models.RawEmail, status models.BatchStatus) (*models.Batch, error) {
	batch := models.NewBatch(len(emails))
	if status == models.BatchStatusInProgress {
		batch.MarkStarted()
	}
	if err := s.batchRepo.Create(batch); err != nil {
		return nil, err
	}
	if err := s.emailRepo.SaveRawEmails(batch.ID, emails); err != nil {
		return nil, err
	}
	return batch, nil
}

// ProcessBatch runs the pipeline over a stored batch, persists the results
// and marks the batch completed. The returned slice is in input order.
func (s *BatchService) ProcessBatch(ctx context.Context, batch *models.Batch, emails []models.RawEmail) ([]models.ProcessedEmail, *models.AnalyticsSnapshot, error) {
	// Claimed and synchronously created batches arrive already in progress
	if batch.Status != models.BatchStatusInProgress {
		batch.MarkStarted()
	}
	if err := s.batchRepo.Update(batch); err != nil {
		return nil, nil, err
	}

	processed := s.processor.ProcessBatch(ctx, emails)
	snapshot := s.analytics.ComputeSnapshot(processed)

	if err := s.emailRepo.SaveProcessedEmails(batch.ID, processed); err != nil {
		batch.MarkFailed()
		batch.SetError(err.Error())
		if updateErr := s.batchRepo.Update(batch); updateErr != nil {
			logger.WithError(updateErr).Errorf("failed to mark batch %s failed", batch.ID)
		}
		return nil, nil, err
	}

	batch.MarkCompleted()
	if err := s.batchRepo.Update(batch); err != nil {
		return nil, nil, err
	}

	// File output is best effort; a full database record already exists
	if err := s.writeResultFiles(processed, snapshot); err != nil {
		logger.WithError(err).Warnf("failed to write result files for batch %s", batch.ID)
	}

	logger.WithField("batch_id", batch.ID).Infof(
		"batch processed: %d emails, %d ok, %d failed",
		snapshot.TotalEmails, snapshot.SuccessfulExtractions, snapshot.FailedExtractions,
	)

	return processed, snapshot, nil
}

// GetBatch retrieves a batch by ID
func (s *BatchService) GetBatch(id string) (*models.Batch, error) {
	return s.batchRepo.GetByID(id)
}

// GetProcessedEmails retrieves the ordered processed results of a batch
func (s *BatchService) GetProcessedEmails(batchID string) ([]models.ProcessedEmail, error) {
	return s.emailRepo.GetProcessedEmailsByBatchID(batchID)
}

// GetLatestCompletedBatch retrieves the most recently completed batch
func (s *BatchService) GetLatestCompletedBatch() (*models.Batch, error) {
	return s.batchRepo.GetLatestCompleted()
}

// writeResultFiles writes the processed list and the analytics snapshot as
// timestamped JSON documents into the configured output directory
func (s *BatchService) writeResultFiles(processed []models.ProcessedEmail, snapshot *models.AnalyticsSnapshot) error {
	dir := s.settingsService.GetOutputDirectory()
	timestamp := time.Now().Format("20060102_150405")

	processedPath := filepath.Join(dir, fmt.Sprintf("processed_emails_%s.json", timestamp))
	if err := writeJSONFile(processedPath, processed); err != nil {
		return err
	}

	analyticsPath := filepath.Join(dir, fmt.Sprintf("analytics_%s.json", timestamp))
	return writeJSONFile(analyticsPath, snapshot)
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
