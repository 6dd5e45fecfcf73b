// Package action models the options menu: one entry per collectible draft
// field plus the terminal control operations. Each action has a stable
// numeric wire id used in callback payloads.
package action

import (
	"errors"
	"fmt"

	"github.com/aspireledger/aspire-bot/internal/ledger"
)

// ErrUnknownAction indicates a callback payload that decodes to no action.
var ErrUnknownAction = errors.New("unknown action id")

// Kind distinguishes field actions from the terminal control actions.
type Kind int

const (
	// KindField selects one draft field for editing.
	KindField Kind = iota
	// KindAbort cancels the open transaction.
	KindAbort
	// KindFinish commits the guided-path draft.
	KindFinish
	// KindMenu returns to the options menu.
	KindMenu
	// KindQuickFinish commits a quick-add draft.
	KindQuickFinish
)

// Action is either a Field entry or a terminal control operation.
type Action struct {
	Kind  Kind
	Field ledger.Field // set only when Kind == KindField
}

// Terminal actions.
var (
	Abort       = Action{Kind: KindAbort}
	Finish      = Action{Kind: KindFinish}
	Menu        = Action{Kind: KindMenu}
	QuickFinish = Action{Kind: KindQuickFinish}
)

// ForField returns the menu action that edits the given field.
func ForField(f ledger.Field) Action {
	return Action{Kind: KindField, Field: f}
}

// FieldActions returns the field entries in canonical field order. The list
// is explicit; nothing relies on comparing wire ids.
func FieldActions() []Action {
	fields := ledger.Fields()
	out := make([]Action, 0, len(fields))
	for _, f := range fields {
		out = append(out, ForField(f))
	}

	return out
}

// Wire ids are part of the callback payload contract and must stay stable
// across releases.
const (
	idDate        = 1
	idOutflow     = 2
	idInflow      = 3
	idCategory    = 4
	idAccount     = 5
	idMemo        = 6
	idAbort       = 10
	idFinish      = 11
	idMenu        = 100
	idQuickFinish = 200
)

var fieldIDs = map[ledger.Field]int{
	ledger.FieldDate:     idDate,
	ledger.FieldOutflow:  idOutflow,
	ledger.FieldInflow:   idInflow,
	ledger.FieldCategory: idCategory,
	ledger.FieldAccount:  idAccount,
	ledger.FieldMemo:     idMemo,
}

var idFields = map[int]ledger.Field{
	idDate:     ledger.FieldDate,
	idOutflow:  ledger.FieldOutflow,
	idInflow:   ledger.FieldInflow,
	idCategory: ledger.FieldCategory,
	idAccount:  ledger.FieldAccount,
	idMemo:     ledger.FieldMemo,
}

// ID returns the stable wire id of the action.
func (a Action) ID() int {
	switch a.Kind {
	case KindField:
		return fieldIDs[a.Field]
	case KindAbort:
		return idAbort
	case KindFinish:
		return idFinish
	case KindMenu:
		return idMenu
	case KindQuickFinish:
		return idQuickFinish
	default:
		return 0
	}
}

// Parse converts a wire id back into an Action. Unknown ids are a routing
// failure: the caller drops the event without touching conversation state.
func Parse(id int) (Action, error) {
	if f, ok := idFields[id]; ok {
		return ForField(f), nil
	}

	switch id {
	case idAbort:
		return Abort, nil
	case idFinish:
		return Finish, nil
	case idMenu:
		return Menu, nil
	case idQuickFinish:
		return QuickFinish, nil
	default:
		return Action{}, fmt.Errorf("%w: %d", ErrUnknownAction, id)
	}
}

// Label returns the button caption for the action.
func (a Action) Label() string {
	switch a.Kind {
	case KindField:
		return a.Field.Label()
	case KindAbort:
		return "Cancel"
	case KindFinish:
		return "Done"
	case KindMenu:
		return "Back"
	case KindQuickFinish:
		return "Save"
	default:
		return ""
	}
}
