package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OverdueWarmer periodically recomputes overdue counts so that reads of
// GET /api/tasks/overdue-count are served from the cache.
type OverdueWarmer struct {
	tasks    *TaskService
	interval time.Duration
	logger   *zap.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewOverdueWarmer(tasks *TaskService, interval time.Duration, logger *zap.Logger) *OverdueWarmer {
	return &OverdueWarmer{
		tasks:    tasks,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

func (w *OverdueWarmer) Start() {
	w.wg.Add(1)
	go w.loop()
}

func (w *OverdueWarmer) loop() {
	defer w.wg.Done()

	w.logger.Info("overdue warmer started", zap.Duration("interval", w.interval))

	w.warmOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.warmOnce()
		case <-w.stop:
			w.logger.Info("overdue warmer stopped")
			return
		}
	}
}

func (w *OverdueWarmer) warmOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), w.interval)
	defer cancel()

	counts, err := w.tasks.RefreshOverdueCounts(ctx)
	if err != nil {
		w.logger.Error("overdue warm failed", zap.Error(err))
		return
	}

	w.logger.Debug("overdue counts warmed", zap.Int("clients", len(counts)))
}

func (w *OverdueWarmer) Shutdown(ctx context.Context) {
	close(w.stop)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("overdue warmer shut down cleanly")
	case <-ctx.Done():
		w.logger.Warn("overdue warmer shutdown timed out")
	}
}
