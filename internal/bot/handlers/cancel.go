package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/state"
)

// NewCancelHandler aborts the transaction from any state. The commit sink is
// never touched on this path.
func NewCancelHandler(fsm state.Machine, log *slog.Logger) Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			log.Warn("cancel handler invoked without sender")
			return nil
		}

		ctx := context.Background()

		if err := fsm.ClearState(ctx, sender.ID); err != nil {
			return apperrors.NewStorageError(err)
		}

		return c.Send("Transaction cancelled.")
	}
}
