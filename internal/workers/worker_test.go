package workers

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseWorkerStopIdempotent(t *testing.T) {
	w := NewBaseWorker("extraction-1")
	w.running.Store(true)

	assert.True(t, w.IsRunning())
	assert.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())

	// Second Stop must not close StopChan twice
	assert.NoError(t, w.Stop())
}

func TestBaseWorkerConcurrentStop(t *testing.T) {
	w := NewBaseWorker("extraction-1")
	w.running.Store(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, w.Stop())
		}()
	}
	wg.Wait()

	assert.False(t, w.IsRunning())
	select {
	case <-w.StopChan:
	default:
		t.Fatal("stop channel should be closed")
	}
}
