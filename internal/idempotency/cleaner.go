package idempotency

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically sweeps expired records and locks out of a MemoryStore.
// The Redis store needs no sweeping; its keys carry TTLs.
type Cleaner struct {
	store    *MemoryStore
	log      *slog.Logger
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(store *MemoryStore, log *slog.Logger, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		store:    store,
		log:      log,
		interval: interval,
	}
}

// Run sweeps immediately and then on every interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.store.Cleanup()

		select {
		case <-ctx.Done():
			c.log.Info("idempotency cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
		}
	}
}
