package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/keyboard"
	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/state"
)

// NewStartHandler opens the guided path: a fresh draft and the options menu.
// Restarting over an open dialogue abandons it, so a half-built draft never
// leaks into the next conversation.
func NewStartHandler(fsm state.Machine, drafts ledger.DraftStore, kb *keyboard.Builder, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			log.Warn("start handler invoked without sender")
			return nil
		}

		ctx := context.Background()
		userID := sender.ID

		if err := drafts.Save(ctx, userID, ledger.NewDraft()); err != nil {
			return apperrors.NewStorageError(err)
		}

		if err := fsm.ClearState(ctx, userID); err != nil {
			return apperrors.NewStorageError(err)
		}

		if err := fsm.TransitionTo(ctx, userID, state.StateMenu, ""); err != nil {
			return apperrors.NewStorageError(err)
		}

		return c.Send("Select Option:", kb.MainMenu())
	}
}
