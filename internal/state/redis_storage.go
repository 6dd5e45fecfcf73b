package state

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
	convKeyPattern  = "conv:state:%d"
	convScanPattern = "conv:state:*"
	conversationTTL = time.Hour
)

// RedisStorage persists conversation states in Redis. States are transient
// by design; the TTL plus the Cleaner reap abandoned dialogues.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) Storage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// GetState returns the stored conversation or ErrStateNotFound when absent.
func (s *RedisStorage) GetState(ctx context.Context, userID int64) (*Conversation, error) {
	data, err := s.client.Get(ctx, redisConvKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}

		s.log.Error("failed to get conversation from redis", "user_id", userID, "error", err)
		return nil, err
	}

	var conv Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		s.log.Error("failed to decode conversation", "user_id", userID, "error", err)
		return nil, err
	}

	return &conv, nil
}

// SetState saves the provided conversation with a one-hour TTL.
func (s *RedisStorage) SetState(ctx context.Context, userID int64, conv *Conversation) error {
	conv.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(conv)
	if err != nil {
		s.log.Error("failed to encode conversation", "user_id", userID, "error", err)
		return err
	}

	if err := s.client.Set(ctx, redisConvKey(userID), data, conversationTTL).Err(); err != nil {
		s.log.Error("failed to save conversation in redis", "user_id", userID, "error", err)
		return err
	}

	return nil
}

// ClearState removes the stored conversation for the given user.
func (s *RedisStorage) ClearState(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, redisConvKey(userID)).Err(); err != nil {
		s.log.Error("failed to clear conversation", "user_id", userID, "error", err)
		return err
	}

	return nil
}

func redisConvKey(userID int64) string {
	return fmt.Sprintf(convKeyPattern, userID)
}
