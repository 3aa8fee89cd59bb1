package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sweeper deletes stored files older than a given age.
type Sweeper interface {
	Sweep(maxAge time.Duration) (int, error)
}

// Janitor periodically removes expired letters.
type Janitor struct {
	store    Sweeper
	ttl      time.Duration
	interval time.Duration
	log      *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJanitor(store Sweeper, ttl, interval time.Duration, log *slog.Logger) *Janitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Janitor{store: store, ttl: ttl, interval: interval, log: log}
}

// Start runs one sweep immediately, then one per interval until ctx ends or
// Stop is called.
func (j *Janitor) Start(ctx context.Context) {
	sweepCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.sweep()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				j.sweep()
			}
		}
	}()
}

// Stop waits for the sweep loop to exit.
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

func (j *Janitor) sweep() {
	n, err := j.store.Sweep(j.ttl)
	if err != nil {
		j.log.Warn("output sweep failed", "error", err)
		return
	}
	if n > 0 {
		j.log.Info("expired letters removed", "count", n)
	}
}
