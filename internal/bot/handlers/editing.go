package handlers

import (
	"context"
	"errors"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/state"
)

// NewEditingInputHandler consumes free text while one draft field is being
// edited. Amount fields reject non-numeric input with a re-prompt and leave
// both draft and state untouched; valid input overwrites the field and keeps
// the user in the editing state until the save button is pressed.
func NewEditingInputHandler(fsm state.Machine, drafts ledger.DraftStore, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := context.Background()
		userID := sender.ID

		conv, err := fsm.GetState(ctx, userID)
		if err != nil {
			if errors.Is(err, state.ErrStateNotFound) {
				return nil
			}
			return apperrors.NewStorageError(err)
		}

		if conv == nil || conv.Current != state.StateEditing || conv.Field == "" {
			return nil
		}

		text := c.Text()
		if conv.Field.IsAmount() && !ledger.IsDigits(text) {
			return c.Reply("Please enter a number")
		}

		draft, err := drafts.Load(ctx, userID)
		if err != nil {
			return apperrors.NewStorageError(err)
		}

		draft.Set(conv.Field, text)

		if err := drafts.Save(ctx, userID, draft); err != nil {
			return apperrors.NewStorageError(err)
		}

		log.Debug("draft field updated",
			slog.Int64("user_id", userID),
			slog.String("field", string(conv.Field)),
		)

		return nil
	}
}
