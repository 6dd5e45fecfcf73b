package keyboard

import (
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/aspireledger/aspire-bot/internal/bot/action"
	"github.com/aspireledger/aspire-bot/internal/ledger"
)

// Builder creates the inline keyboards of the transaction dialogue.
type Builder struct {
	formatter *ledger.Formatter
	log       *slog.Logger
}

// NewBuilder returns a new Builder instance.
func NewBuilder(formatter *ledger.Formatter, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}

	return &Builder{
		formatter: formatter,
		log:       log,
	}
}

// MainMenu builds the menu shown on /start: field buttons two per row with
// plain labels, then the Cancel row.
func (b *Builder) MainMenu() *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()

	fields := action.FieldActions()
	for i := 0; i < len(fields); i += 2 {
		row := []InlineButton{buttonFor(fields[i], fields[i].Label())}
		if i+1 < len(fields) {
			row = append(row, buttonFor(fields[i+1], fields[i+1].Label()))
		}
		kb.AddRow(row...)
	}

	kb.AddRow(buttonFor(action.Abort, action.Abort.Label()))

	return kb.Build()
}

// OptionsMenu builds the update menu: one button per field captioned with
// the current draft value, then the Cancel and Done rows.
func (b *Builder) OptionsMenu(draft *ledger.Draft) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()

	for _, a := range action.FieldActions() {
		kb.AddRow(buttonFor(a, b.fieldCaption(draft, a.Field)))
	}

	kb.AddRow(buttonFor(action.Abort, action.Abort.Label()))
	kb.AddRow(buttonFor(action.Finish, action.Finish.Label()))

	return kb.Build()
}

// SaveButton builds the single-button markup shown while editing a field.
func (b *Builder) SaveButton() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "💾 Save", Data: SaveData}).
		Build()
}

// QuickSaveButton builds the confirmation markup of the quick-add path.
func (b *Builder) QuickSaveButton() *telebot.ReplyMarkup {
	return NewInlineKeyboard().
		AddRow(InlineButton{Text: "💾 Save", Data: QuickSaveData}).
		Build()
}

// fieldCaption captions a field button with its current value, or just the
// field name when the value is unset or unrenderable.
func (b *Builder) fieldCaption(draft *ledger.Draft, f ledger.Field) string {
	if draft == nil {
		return f.Label()
	}

	value, err := b.formatter.FieldValue(draft, f)
	if err != nil {
		b.log.Warn("failed to format field for keyboard", "field", f, "error", err)
		return f.Label()
	}

	if value == "" {
		return f.Label()
	}

	return f.Label() + ": " + value
}

func buttonFor(a action.Action, caption string) InlineButton {
	return InlineButton{Text: caption, Data: EncodeAction(a)}
}
