package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupDraftRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupDraftRedis(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	userID := int64(42)

	draft := NewDraft()
	draft.Set(FieldDate, "08/29/26")
	draft.Set(FieldOutflow, "1500")
	draft.Set(FieldMemo, "taxi fare")

	if err := store.Save(ctx, userID, draft); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, f := range Fields() {
		if loaded.Get(f) != draft.Get(f) {
			t.Errorf("field %s = %q, want %q", f, loaded.Get(f), draft.Get(f))
		}
	}
}

func TestRedisStoreLoadMissingReturnsEmptyDraft(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupDraftRedis(t), slog.New(slog.NewTextHandler(io.Discard, nil)))

	draft, err := store.Load(ctx, 7)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for _, f := range Fields() {
		if draft.Get(f) != "" {
			t.Errorf("field %s = %q, want empty", f, draft.Get(f))
		}
	}
}

func TestRedisStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupDraftRedis(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
	userID := int64(9)

	draft := NewDraft()
	draft.Set(FieldMemo, "groceries")

	if err := store.Save(ctx, userID, draft); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(ctx, userID); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := store.Load(ctx, userID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Memo != "" {
		t.Errorf("draft survived Clear: %+v", loaded)
	}
}
