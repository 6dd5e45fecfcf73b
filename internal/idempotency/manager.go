package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// ErrRequestInProgress is returned when another goroutine or instance is
// currently executing the operation for the same key.
var ErrRequestInProgress = errors.New("request with this key is already in progress")

// Operation is the unit of work guarded by an idempotency key.
type Operation func(ctx context.Context) (interface{}, error)

// Result reports the operation outcome and whether it was replayed from a
// previous execution.
type Result struct {
	Response  interface{}
	FromCache bool
}

// Manager executes operations at most once per key. Telegram redelivers
// updates after restarts and webhook timeouts; without this a redelivered
// save press would append the same row twice.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

const (
	lockTTL      = 5 * time.Minute
	pollInterval = 100 * time.Millisecond
)

type manager struct {
	store Store
	log   *slog.Logger
}

// NewManager creates a Manager on top of the provided store.
func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{store: store, log: log}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}

	for {
		locked, err := m.store.Lock(ctx, key, lockTTL)
		if err != nil {
			return nil, err
		}

		if locked {
			return m.run(ctx, key, ttl, fn)
		}

		record, err := m.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		if record != nil && record.Status == StatusCompleted {
			return replay(record)
		}

		if record != nil && record.Status == StatusProcessing {
			return nil, ErrRequestInProgress
		}

		// The lock holder has not written its record yet. Wait and retry.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (m *manager) run(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	defer func() {
		if err := m.store.ReleaseLock(ctx, key); err != nil {
			m.log.Error("failed to release idempotency lock", slog.String("key", key), slog.Any("error", err))
		}
	}()

	// The lock alone is not enough: the first execution releases it when it
	// finishes, so a redelivered update acquires it again. A completed record
	// means this key already ran; replay its outcome instead of executing.
	record, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record != nil && record.Status == StatusCompleted {
		return replay(record)
	}

	result, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	responseBytes, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}

	if err := m.store.Set(ctx, key, &Record{
		Status:   StatusCompleted,
		Response: responseBytes,
	}, ttl); err != nil {
		return nil, err
	}

	return &Result{Response: result, FromCache: false}, nil
}

func replay(record *Record) (*Result, error) {
	var response interface{}
	if len(record.Response) > 0 {
		if err := json.Unmarshal(record.Response, &response); err != nil {
			return nil, err
		}
	}

	return &Result{Response: response, FromCache: true}, nil
}
