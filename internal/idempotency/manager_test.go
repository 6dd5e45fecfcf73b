package idempotency

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, testLogger())
}

func TestManagerExecutesOnce(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  testRedisStore(t),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			manager := NewManager(store, testLogger())

			calls := 0
			op := func(ctx context.Context) (interface{}, error) {
				calls++
				return "done", nil
			}

			first, err := manager.Execute(context.Background(), "msg:1:100", time.Minute, op)
			require.NoError(t, err)
			assert.False(t, first.FromCache)

			second, err := manager.Execute(context.Background(), "msg:1:100", time.Minute, op)
			require.NoError(t, err)
			assert.True(t, second.FromCache)
			assert.Equal(t, "done", second.Response)

			assert.Equal(t, 1, calls)
		})
	}
}

func TestManagerRedeliveryAfterLockReleaseReplays(t *testing.T) {
	// The first execution releases its lock when it finishes, so a
	// redelivered update acquires the lock again instead of contending.
	// The stored record must still prevent a second execution.
	store := NewMemoryStore()
	manager := NewManager(store, testLogger())

	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		return "saved", nil
	}

	first, err := manager.Execute(context.Background(), "cb:77", time.Hour, op)
	require.NoError(t, err)
	require.False(t, first.FromCache)

	store.mu.Lock()
	locksHeld := len(store.locks)
	store.mu.Unlock()
	require.Zero(t, locksHeld)

	second, err := manager.Execute(context.Background(), "cb:77", time.Hour, op)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, "saved", second.Response)
	assert.Equal(t, 1, calls)
}

func TestManagerDistinctKeysRunIndependently(t *testing.T) {
	manager := NewManager(NewMemoryStore(), testLogger())

	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		return nil, nil
	}

	_, err := manager.Execute(context.Background(), "msg:1:100", time.Minute, op)
	require.NoError(t, err)
	_, err = manager.Execute(context.Background(), "msg:1:101", time.Minute, op)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestManagerFailedOperationCanRetry(t *testing.T) {
	manager := NewManager(NewMemoryStore(), testLogger())

	calls := 0
	op := func(ctx context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, assert.AnError
		}
		return "done", nil
	}

	_, err := manager.Execute(context.Background(), "msg:1:100", time.Minute, op)
	require.Error(t, err)

	result, err := manager.Execute(context.Background(), "msg:1:100", time.Minute, op)
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 2, calls)
}

func TestMemoryStoreCleanupEvictsExpired(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Set(context.Background(), "old", &Record{Status: StatusCompleted}, -time.Second))
	require.NoError(t, store.Set(context.Background(), "fresh", &Record{Status: StatusCompleted}, time.Hour))

	locked, err := store.Lock(context.Background(), "stale-lock", -time.Second)
	require.NoError(t, err)
	require.True(t, locked)

	store.Cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.records, 1)
	assert.Contains(t, store.records, "fresh")
	assert.Empty(t, store.locks)
}

func TestCleanerSweepsExpiredRecords(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "old", &Record{Status: StatusCompleted}, -time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewCleaner(store, testLogger(), time.Minute).Run(ctx)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.records)
}

func TestRedisStoreRecordExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client, testLogger())

	require.NoError(t, store.Set(context.Background(), "k", &Record{Status: StatusCompleted}, time.Minute))

	mr.FastForward(2 * time.Minute)

	record, err := store.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, record)
}
