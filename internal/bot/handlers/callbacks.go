package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/action"
	"github.com/aspireledger/aspire-bot/internal/bot/keyboard"
	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/state"
)

// NewActionsCallbackHandler routes menu button presses. Payloads that decode
// to no known action and buttons pressed outside the menu state are dropped
// without touching conversation state.
func NewActionsCallbackHandler(
	fsm state.Machine,
	drafts ledger.DraftStore,
	formatter *ledger.Formatter,
	kb *keyboard.Builder,
	sink ledger.Sink,
	log *slog.Logger,
) CallbackHandler {
	if log == nil {
		log = slog.Default()
	}

	return func(c telebot.Context) error {
		cb := c.Callback()
		sender := c.Sender()
		if cb == nil || sender == nil {
			return nil
		}

		a, err := keyboard.DecodeAction(cb.Data)
		if err != nil {
			log.Warn("dropping unroutable callback", slog.String("data", cb.Data), slog.Any("error", err))
			return ack(c)
		}

		ctx := context.Background()
		userID := sender.ID

		conv, err := fsm.GetState(ctx, userID)
		if err != nil && !errors.Is(err, state.ErrStateNotFound) {
			return apperrors.NewStorageError(err)
		}
		if conv == nil || conv.Current != state.StateMenu {
			// Stale button from a closed dialogue.
			log.Debug("menu callback outside menu state", slog.Int64("user_id", userID))
			return ack(c)
		}

		switch a.Kind {
		case action.KindField:
			return selectField(ctx, c, fsm, drafts, formatter, kb, a.Field)
		case action.KindAbort:
			if err := fsm.ClearState(ctx, userID); err != nil {
				return apperrors.NewStorageError(err)
			}
			if err := c.Edit("Transaction cancelled."); err != nil {
				return err
			}
			return ack(c)
		case action.KindFinish:
			return commitDraft(ctx, c, fsm, drafts, sink, userID, true)
		case action.KindMenu:
			return showOptions(ctx, c, drafts, kb, userID)
		default:
			log.Warn("unexpected action in menu state", slog.Int("action_id", a.ID()))
			return ack(c)
		}
	}
}

// NewSaveCallbackHandler handles the save button shown while editing: the
// user returns to the options menu with the updated draft on display.
func NewSaveCallbackHandler(
	fsm state.Machine,
	drafts ledger.DraftStore,
	kb *keyboard.Builder,
	log *slog.Logger,
) CallbackHandler {
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
		if err != nil && !errors.Is(err, state.ErrStateNotFound) {
			return apperrors.NewStorageError(err)
		}
		if conv == nil || conv.Current != state.StateEditing {
			return ack(c)
		}

		if err := fsm.TransitionTo(ctx, userID, state.StateMenu, ""); err != nil {
			return apperrors.NewStorageError(err)
		}

		return showOptions(ctx, c, drafts, kb, userID)
	}
}

// NewQuickSaveCallbackHandler commits a quick-add draft. Pressing the button
// again after a successful save finds the user idle and is dropped, so the
// sink is invoked exactly once per confirmed draft.
func NewQuickSaveCallbackHandler(
	fsm state.Machine,
	drafts ledger.DraftStore,
	sink ledger.Sink,
	log *slog.Logger,
) CallbackHandler {
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
		if err != nil && !errors.Is(err, state.ErrStateNotFound) {
			return apperrors.NewStorageError(err)
		}
		if conv == nil || conv.Current != state.StateQuickConfirm {
			return ack(c)
		}

		return commitDraft(ctx, c, fsm, drafts, sink, userID, false)
	}
}

// commitDraft appends the draft through the sink. On failure the draft and
// conversation state stay untouched so the user can retry; on success both
// are reset and the user is back to idle.
func commitDraft(
	ctx context.Context,
	c telebot.Context,
	fsm state.Machine,
	drafts ledger.DraftStore,
	sink ledger.Sink,
	userID int64,
	editMessage bool,
) error {
	draft, err := drafts.Load(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	if err := sink.Append(ctx, draft.Record()); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.NewSinkError(err)
	}

	if err := drafts.Clear(ctx, userID); err != nil {
		return apperrors.NewStorageError(err)
	}
	if err := fsm.ClearState(ctx, userID); err != nil {
		return apperrors.NewStorageError(err)
	}

	const saved = "✅ Transaction Saved"
	if editMessage {
		if err := c.Edit(saved); err != nil {
			return err
		}
	} else if err := c.Send(saved); err != nil {
		return err
	}

	return ack(c)
}

func selectField(
	ctx context.Context,
	c telebot.Context,
	fsm state.Machine,
	drafts ledger.DraftStore,
	formatter *ledger.Formatter,
	kb *keyboard.Builder,
	field ledger.Field,
) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	userID := sender.ID

	if err := fsm.TransitionTo(ctx, userID, state.StateEditing, field); err != nil {
		return apperrors.NewStorageError(err)
	}

	draft, err := drafts.Load(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	display, err := formatter.FieldValue(draft, field)
	if err != nil {
		return err
	}
	if display == "" {
		display = "''"
	}

	text := fmt.Sprintf("[Current Value: %s]\nEnter %s : ", display, field.Label())
	if err := c.Edit(text, kb.SaveButton()); err != nil {
		return err
	}

	return ack(c)
}

func showOptions(
	ctx context.Context,
	c telebot.Context,
	drafts ledger.DraftStore,
	kb *keyboard.Builder,
	userID int64,
) error {
	draft, err := drafts.Load(ctx, userID)
	if err != nil {
		return apperrors.NewStorageError(err)
	}

	if err := c.Edit("Update:", kb.OptionsMenu(draft)); err != nil {
		return err
	}

	return ack(c)
}

// ack stops the loading spinner on the pressed button.
func ack(c telebot.Context) error {
	return c.Respond(&telebot.CallbackResponse{})
}
