// Package state manages the per-user conversation state machine of the bot.
package state

import "context"

// Storage defines the persistence contract for conversation state.
type Storage interface {
	// GetState returns the current conversation for the specified user.
	GetState(ctx context.Context, userID int64) (*Conversation, error)
	// SetState saves the provided conversation for the specified user.
	SetState(ctx context.Context, userID int64, conv *Conversation) error
	// ClearState removes the conversation for the specified user.
	ClearState(ctx context.Context, userID int64) error
}
