package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrNotNumeric indicates that a stored amount cannot be rendered as an
// integer. Input validation makes this unreachable in normal operation.
var ErrNotNumeric = errors.New("amount value is not numeric")

// Formatter renders a draft as the text block shown to the user, applying
// the configured currency symbol and thousands separators to amount fields.
type Formatter struct {
	currency string
	printer  *message.Printer
}

// NewFormatter creates a Formatter using the provided currency symbol.
func NewFormatter(currency string) *Formatter {
	return &Formatter{
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

// Render produces one "<Label> : <value>" line per field in canonical order,
// surrounded by blank lines. Unset fields keep their label so the user can
// see what is still collectible.
func (f *Formatter) Render(d *Draft) (string, error) {
	lines := make([]string, 0, len(fieldOrder))
	for _, field := range fieldOrder {
		value, err := f.FieldValue(d, field)
		if err != nil {
			return "", err
		}

		lines = append(lines, fmt.Sprintf("%s : %s", field.Label(), value))
	}

	return "\n" + strings.Join(lines, "\n") + "\n", nil
}

// FieldValue returns the display form of a single field: amounts become
// "<currency> <grouped integer>", everything else is passed through.
func (f *Formatter) FieldValue(d *Draft, field Field) (string, error) {
	value := d.Get(field)
	if value == "" || !field.IsAmount() {
		return value, nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: field %s holds %q", ErrNotNumeric, field, value)
	}

	return f.currency + " " + f.printer.Sprintf("%d", n), nil
}

// Currency exposes the configured currency symbol for prompt texts.
func (f *Formatter) Currency() string {
	return f.currency
}
