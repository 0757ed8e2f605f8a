package workers

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alimgiray/mailscope/internal/repositories"
	"github.com/alimgiray/mailscope/internal/services"
	"github.com/alimgiray/mailscope/pkg/logger"
)

// pollInterval is how often an idle worker checks for pending batches
const pollInterval = 5 * time.Second

// ExtractionWorker claims pending batches and runs them through the
// processing pipeline in the background
type ExtractionWorker struct {
	*BaseWorker
	batchRepo    *repositories.BatchRepository
	emailRepo    *repositories.EmailRepository
	batchService *services.BatchService
}

// NewExtractionWorker creates a new extraction worker
func NewExtractionWorker(
	workerID string,
	batchRepo *repositories.BatchRepository,
	emailRepo *repositories.EmailRepository,
	batchService *services.BatchService,
) *ExtractionWorker {
	return &ExtractionWorker{
		BaseWorker:   NewBaseWorker(workerID),
		batchRepo:    batchRepo,
		emailRepo:    emailRepo,
		batchService: batchService,
	}
}

// Start begins polling for pending batches
func (w *ExtractionWorker) Start(ctx context.Context) error {
	w.running.Store(true)
	logger.Infof("extraction worker %s started", w.WorkerID)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.StopChan:
			return nil
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

// processNext claims and processes at most one pending batch
func (w *ExtractionWorker) processNext(ctx context.Context) {
	batch, err := w.batchRepo.ClaimPending(w.WorkerID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.WithError(err).Errorf("worker %s failed to claim batch", w.WorkerID)
		}
		return
	}

	emails, err := w.emailRepo.GetRawEmailsByBatchID(batch.ID)
	if err != nil {
		logger.WithError(err).Errorf("worker %s failed to load emails for batch %s", w.WorkerID, batch.ID)
		batch.MarkFailed()
		batch.SetError(err.Error())
		if updateErr := w.batchRepo.Update(batch); updateErr != nil {
			logger.WithError(updateErr).Errorf("worker %s failed to mark batch %s failed", w.WorkerID, batch.ID)
		}
		return
	}

	if _, _, err := w.batchService.ProcessBatch(ctx, batch, emails); err != nil {
		logger.WithError(err).Errorf("worker %s failed to process batch %s", w.WorkerID, batch.ID)
	}
}
