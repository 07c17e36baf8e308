package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sumire/overflow/internal/domain"
)

// JobProcessor drains one job from a queue per call.
type JobProcessor interface {
	// ProcessNext runs one job, returning domain.ErrNotFound when the
	// queue is empty.
	ProcessNext(ctx context.Context) error
}

// AIPool runs a fixed set of workers that poll the AI job queue.
type AIPool struct {
	processor JobProcessor
	workers   int
	interval  time.Duration
}

// NewAIPool creates a pool of the given size. interval is how long an
// idle worker waits before polling again.
func NewAIPool(processor JobProcessor, workers int, interval time.Duration) *AIPool {
	if workers <= 0 {
		workers = 1
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &AIPool{processor: processor, workers: workers, interval: interval}
}

// Run starts the workers and blocks until ctx is cancelled and every
// worker has drained its current job.
func (p *AIPool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *AIPool) work(ctx context.Context, id int) {
	slog.Info("ai worker started", "worker", id)
	for {
		err := p.processor.ProcessNext(ctx)
		switch {
		case err == nil:
			// job processed, look for the next one immediately
			continue
		case errors.Is(err, domain.ErrNotFound):
			// queue empty, wait before polling again
		case errors.Is(err, context.Canceled):
			slog.Info("ai worker stopped", "worker", id)
			return
		default:
			slog.Error("ai worker poll failed", "worker", id, "error", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("ai worker stopped", "worker", id)
			return
		case <-time.After(p.interval):
		}
	}
}
