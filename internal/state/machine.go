package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aspireledger/aspire-bot/internal/ledger"
)

const (
	userLockKeyPattern = "conv:lock:%d"
	lockTTL            = 5 * time.Second
)

var (
	// ErrInvalidTransition indicates that a requested FSM transition is not allowed.
	ErrInvalidTransition = errors.New("invalid conversation transition")
	// ErrStateNotFound indicates that no conversation is open for the user.
	ErrStateNotFound = errors.New("conversation state not found")
	// ErrStateLocked indicates that a concurrent update already holds the user lock.
	ErrStateLocked = errors.New("conversation state is locked, try again later")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe FSM transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// Machine describes the operations supported by the conversation FSM.
type Machine interface {
	GetState(ctx context.Context, userID int64) (*Conversation, error)
	TransitionTo(ctx context.Context, userID int64, newState State, field ledger.Field) error
	ClearState(ctx context.Context, userID int64) error
}

// machine is a concrete Machine backed by Storage, with optional Redis
// locking to serialize updates delivered concurrently for the same user.
type machine struct {
	storage     Storage
	log         *slog.Logger
	redisClient *redis.Client
}

// NewMachine creates an FSM controller using the provided storage backend
// and an optional redis client for per-user locking.
func NewMachine(storage Storage, log *slog.Logger, redisClient *redis.Client) Machine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage:     storage,
		log:         log,
		redisClient: redisClient,
	}
}

// GetState proxies to the underlying storage implementation.
func (m *machine) GetState(ctx context.Context, userID int64) (*Conversation, error) {
	return m.storage.GetState(ctx, userID)
}

// TransitionTo changes the conversation state if the transition table allows
// it, guarded by the per-user lock. Users without a stored conversation are
// treated as idle.
func (m *machine) TransitionTo(ctx context.Context, userID int64, newState State, field ledger.Field) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	current := StateIdle

	stored, err := m.storage.GetState(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrStateNotFound) {
			return err
		}
	} else if stored != nil {
		current = stored.Current
	}

	if !IsTransitionAllowed(current, newState) {
		m.log.Warn("invalid conversation transition", "user_id", userID, "from", current, "to", newState)
		return ErrInvalidTransition
	}

	transitionRecorder(string(current), string(newState))

	return m.storage.SetState(ctx, userID, &Conversation{
		UserID:  userID,
		Current: newState,
		Field:   field,
	})
}

// ClearState removes the stored conversation while holding the lock. The
// user is idle afterwards.
func (m *machine) ClearState(ctx context.Context, userID int64) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	return m.storage.ClearState(ctx, userID)
}

func (m *machine) lock(ctx context.Context, userID int64) error {
	if m.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	acquired, err := m.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		m.log.Error("failed to acquire conversation lock", "user_id", userID, "error", err)
		return err
	}

	if !acquired {
		m.log.Warn("conversation lock already held", "user_id", userID)
		return ErrStateLocked
	}

	return nil
}

func (m *machine) unlock(ctx context.Context, userID int64) {
	if m.redisClient == nil {
		return
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	if err := m.redisClient.Del(ctx, key).Err(); err != nil {
		m.log.Error("failed to release conversation lock", "user_id", userID, "error", err)
	}
}
