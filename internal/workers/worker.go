package workers

import (
	"context"
	"sync/atomic"
)

// Worker interface defines the contract for background workers
type Worker interface {
	// Start begins the worker process
	Start(ctx context.Context) error

	// Stop gracefully stops the worker
	Stop() error

	// GetWorkerID returns the unique identifier for this worker
	GetWorkerID() string
}

// BaseWorker provides common functionality for all workers. The running flag
// is written by the worker goroutine and by Stop from the shutdown path, so
// it is atomic.
type BaseWorker struct {
	WorkerID string
	StopChan chan struct{}

	running atomic.Bool
}

// NewBaseWorker creates a new base worker
func NewBaseWorker(workerID string) *BaseWorker {
	return &BaseWorker{
		WorkerID: workerID,
		StopChan: make(chan struct{}),
	}
}

// GetWorkerID returns the worker's unique identifier
func (w *BaseWorker) GetWorkerID() string {
	return w.WorkerID
}

// Stop gracefully stops the worker. Safe to call more than once; StopChan
// closes only on the first transition out of running.
func (w *BaseWorker) Stop() error {
	if w.running.CompareAndSwap(true, false) {
		close(w.StopChan)
	}
	return nil
}

// IsRunning checks if the worker is currently running
func (w *BaseWorker) IsRunning() bool {
	return w.running.Load()
}
