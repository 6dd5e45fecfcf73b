package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner periodically drops inactive buckets from a MemoryLimiter so idle
// users do not pin memory forever. The Redis limiter expires its own keys.
type Cleaner struct {
	limiter  *MemoryLimiter
	log      *slog.Logger
	maxAge   time.Duration
	interval time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(limiter *MemoryLimiter, log *slog.Logger, maxAge, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		limiter:  limiter,
		log:      log,
		maxAge:   maxAge,
		interval: interval,
	}
}

// Run sweeps immediately and then on every interval until ctx is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.limiter == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.limiter.Cleanup(c.maxAge)

		select {
		case <-ctx.Done():
			c.log.Info("rate limit cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
		}
	}
}
