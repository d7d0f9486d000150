package scheduler

import (
	"context"
	"sync"
	"time"

	"marketplace-console/internal/logging"
	"marketplace-console/internal/opqueue"
)

// QueueWorker flushes the offline operation queue on a poll ticker
type QueueWorker struct {
	flusher      Flusher
	pollInterval time.Duration
	batchSize    int

	mu        sync.Mutex
	stopChan  chan struct{}
	done      chan struct{}
	isRunning bool
	lastRun   time.Time
	lastFlush *opqueue.FlushResult
}

// NewQueueWorker creates a new queue worker
func NewQueueWorker(flusher Flusher, pollInterval time.Duration, batchSize int) *QueueWorker {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &QueueWorker{
		flusher:      flusher,
		pollInterval: pollInterval,
		batchSize:    batchSize,
	}
}

// Start starts the queue worker
func (w *QueueWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isRunning {
		logging.Logger.Info("QueueWorker: Already running")
		return
	}

	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.isRunning = true
	logging.Logger.Infof("QueueWorker: Started (poll_interval=%v, batch_size=%d)", w.pollInterval, w.batchSize)

	go w.run(w.stopChan, w.done)
}

// Stop stops the queue worker and waits for the current batch
func (w *QueueWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	logging.Logger.Info("QueueWorker: Stopping...")
	w.isRunning = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
}

// run is the main worker loop
func (w *QueueWorker) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			logging.Logger.Info("QueueWorker: Stopped")
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.pollInterval*10)
			_, _ = w.FlushNow(ctx)
			cancel()
		}
	}
}

// FlushNow processes one batch immediately
func (w *QueueWorker) FlushNow(ctx context.Context) (*opqueue.FlushResult, error) {
	result, err := w.flusher.Flush(ctx, w.batchSize)
	if err != nil {
		logging.Logger.Errorf("QueueWorker: Flush failed: %v", err)
		return nil, err
	}

	w.mu.Lock()
	w.lastRun = time.Now()
	w.lastFlush = result
	w.mu.Unlock()
	return result, nil
}

// Status reports whether the worker runs and what its last flush did
func (w *QueueWorker) Status() map[string]interface{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := map[string]interface{}{
		"is_running":    w.isRunning,
		"poll_interval": w.pollInterval.String(),
		"batch_size":    w.batchSize,
	}
	if !w.lastRun.IsZero() {
		status["last_run"] = w.lastRun
		status["last_flush"] = w.lastFlush
	}
	return status
}
