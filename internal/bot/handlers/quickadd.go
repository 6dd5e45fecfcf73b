package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/shlex"
	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/keyboard"
	apperrors "github.com/aspireledger/aspire-bot/internal/errors"
	"github.com/aspireledger/aspire-bot/internal/ledger"
	"github.com/aspireledger/aspire-bot/internal/state"
)

// Quick-add command vocabulary. Matching is an explicit case-insensitive
// prefix check, not a regex, so "AddInc", "addincome", "ADDEXPENSE" all work.
const (
	incomePrefix  = "addinc"
	expensePrefix = "addexp"
)

const dateLayout = "01/02/06"

// MatchQuickAdd reports which amount field a quick-add command targets:
// inflow for income commands, outflow for expense commands.
func MatchQuickAdd(text string) (ledger.Field, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, incomePrefix):
		return ledger.FieldInflow, true
	case strings.HasPrefix(lower, expensePrefix):
		return ledger.FieldOutflow, true
	default:
		return "", false
	}
}

// SplitQuickAddArgs tokenizes the command with shell quoting rules and
// drops the leading command token, so a quoted memo may contain spaces.
func SplitQuickAddArgs(text string) ([]string, error) {
	tokens, err := shlex.Split(text)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Could not parse the command: %v", err))
	}

	if len(tokens) == 0 {
		return nil, apperrors.NewValidationError("Empty command")
	}

	return tokens[1:], nil
}

// NewQuickAddHandler handles free text while no dialogue is open. A quick-add
// command builds a dated draft in one step and offers to save it; anything
// else is ignored.
func NewQuickAddHandler(
	fsm state.Machine,
	drafts ledger.DraftStore,
	formatter *ledger.Formatter,
	kb *keyboard.Builder,
	loc *time.Location,
	log *slog.Logger,
) Handler {
	if log == nil {
		log = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		text := c.Text()
		field, ok := MatchQuickAdd(text)
		if !ok {
			return nil
		}

		args, err := SplitQuickAddArgs(text)
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.UserMessage != "" {
				return c.Reply(appErr.UserMessage)
			}
			return err
		}

		if len(args) != 2 {
			return c.Reply(fmt.Sprintf("Expected 2 parameters, received %d: %v", len(args), args))
		}

		amount, memo := args[0], args[1]
		if !ledger.IsDigits(amount) {
			return c.Reply("Please enter a number")
		}

		ctx := context.Background()
		userID := sender.ID

		draft := ledger.NewDraft()
		draft.Set(ledger.FieldDate, time.Now().In(loc).Format(dateLayout))
		draft.Set(field, amount)
		draft.Set(ledger.FieldMemo, memo)

		if err := drafts.Save(ctx, userID, draft); err != nil {
			return apperrors.NewStorageError(err)
		}

		if err := fsm.TransitionTo(ctx, userID, state.StateQuickConfirm, ""); err != nil {
			return apperrors.NewStorageError(err)
		}

		rendered, err := formatter.Render(draft)
		if err != nil {
			return err
		}

		return c.Send("[Received Data]"+rendered, kb.QuickSaveButton())
	}
}
