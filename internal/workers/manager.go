package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/mailscope/internal/repositories"
	"github.com/alimgiray/mailscope/internal/services"
	"github.com/alimgiray/mailscope/pkg/logger"
)

// WorkerManager manages the background extraction workers
type WorkerManager struct {
	workers      []Worker
	batchRepo    *repositories.BatchRepository
	emailRepo    *repositories.EmailRepository
	batchService *services.BatchService
	workerCount  int
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(
	batchRepo *repositories.BatchRepository,
	emailRepo *repositories.EmailRepository,
	batchService *services.BatchService,
	workerCount int,
) *WorkerManager {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerManager{
		workers:      make([]Worker, 0),
		batchRepo:    batchRepo,
		emailRepo:    emailRepo,
		batchService: batchService,
		workerCount:  workerCount,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// StartAll starts the configured number of extraction workers
func (wm *WorkerManager) StartAll() error {
	for i := 0; i < wm.workerCount; i++ {
		worker := NewExtractionWorker(
			fmt.Sprintf("extraction-%d", i+1),
			wm.batchRepo, wm.emailRepo, wm.batchService,
		)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("started %d extraction workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("error stopping worker %s", worker.GetWorkerID())
		}
	}

	// Wait for all workers to finish
	wm.wg.Wait()

	logger.Infof("all workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil {
			logger.WithError(err).Errorf("worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}
