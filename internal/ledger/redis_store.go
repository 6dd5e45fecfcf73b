package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	draftKeyPattern = "user:draft:%d"
	draftTTL        = 24 * time.Hour
)

// RedisStore persists drafts in Redis so a half-built transaction survives
// process restarts until it is committed or abandoned.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStore initializes a Redis-backed DraftStore.
func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{
		client: client,
		log:    log,
	}
}

// Load returns the stored draft, or a fresh empty draft when none exists.
func (s *RedisStore) Load(ctx context.Context, userID int64) (*Draft, error) {
	data, err := s.client.Get(ctx, redisDraftKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewDraft(), nil
		}

		s.log.Error("failed to load draft from redis", "user_id", userID, "error", err)
		return nil, err
	}

	var draft Draft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		s.log.Error("failed to decode draft", "user_id", userID, "error", err)
		return nil, err
	}

	return &draft, nil
}

// Save stores the draft with a TTL so abandoned drafts age out on their own.
func (s *RedisStore) Save(ctx context.Context, userID int64, draft *Draft) error {
	if draft == nil {
		draft = NewDraft()
	}

	data, err := json.Marshal(draft)
	if err != nil {
		s.log.Error("failed to encode draft", "user_id", userID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, redisDraftKey(userID), data, draftTTL).Err(); err != nil {
		s.log.Error("failed to save draft in redis", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// Clear removes the stored draft for the given user.
func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, redisDraftKey(userID)).Err(); err != nil {
		s.log.Error("failed to clear draft", "user_id", userID, "error", err)
		return err
	}

	return nil
}

func redisDraftKey(userID int64) string {
	return fmt.Sprintf(draftKeyPattern, userID)
}
