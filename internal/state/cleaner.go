package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cleanerScanBatchCount = 100

// Cleaner removes abandoned conversations from Redis on a schedule. The key
// TTL already bounds their lifetime; the cleaner reclaims them earlier so a
// user who walked away mid-dialogue starts fresh sooner.
type Cleaner struct {
	redisClient *redis.Client
	storage     Storage
	log         *slog.Logger
	maxAge      time.Duration
	interval    time.Duration
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(redisClient *redis.Client, storage Storage, log *slog.Logger, maxAge, interval time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		redisClient: redisClient,
		storage:     storage,
		log:         log,
		maxAge:      maxAge,
		interval:    interval,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.redisClient == nil || c.storage == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("conversation cleaner stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *Cleaner) cleanup(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	var cursor uint64
	for {
		keys, nextCursor, err := c.redisClient.Scan(ctx, cursor, convScanPattern, cleanerScanBatchCount).Result()
		if err != nil {
			c.log.Error("conversation cleaner scan failed", slog.Any("error", err))
			return
		}

		for _, key := range keys {
			userID, err := extractUserID(key)
			if err != nil {
				c.log.Warn("conversation cleaner unable to parse user id", slog.String("key", key), slog.Any("error", err))
				continue
			}

			conv, err := c.storage.GetState(ctx, userID)
			if err != nil {
				if !errors.Is(err, ErrStateNotFound) {
					c.log.Error("conversation cleaner failed to load state", slog.Int64("user_id", userID), slog.Any("error", err))
				}
				continue
			}

			if conv == nil || time.Since(conv.UpdatedAt) <= c.maxAge {
				continue
			}

			if err := c.storage.ClearState(ctx, userID); err != nil {
				c.log.Error("conversation cleaner failed to clear state", slog.Int64("user_id", userID), slog.Any("error", err))
				continue
			}

			c.log.Info("stale conversation cleared", slog.Int64("user_id", userID), slog.String("state", string(conv.Current)))
		}

		if ctx.Err() != nil || nextCursor == 0 {
			return
		}
		cursor = nextCursor
	}
}

func extractUserID(key string) (int64, error) {
	segments := strings.Split(key, ":")
	if len(segments) == 0 {
		return 0, fmt.Errorf("invalid key format: %s", key)
	}

	return strconv.ParseInt(segments[len(segments)-1], 10, 64)
}
