package state

import (
	"time"

	"github.com/aspireledger/aspire-bot/internal/ledger"
)

// State represents a finite-state machine state of one user's conversation.
type State string

const (
	// StateIdle indicates that no transaction dialogue is open.
	StateIdle State = "idle"
	// StateMenu indicates that the options menu is shown and the bot awaits a button press.
	StateMenu State = "menu"
	// StateEditing indicates that the bot awaits free text for one draft field.
	StateEditing State = "editing"
	// StateQuickConfirm indicates that a quick-add draft awaits the save button.
	StateQuickConfirm State = "quick_confirm"
)

// Conversation captures the current FSM state for a Telegram user. Field is
// populated only while the user is editing a specific draft field.
type Conversation struct {
	UserID    int64        `json:"user_id"`
	Current   State        `json:"current_state"`
	Field     ledger.Field `json:"field,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}
