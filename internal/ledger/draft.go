// Package ledger holds the transaction draft model, its per-user storage,
// the human-readable rendering of drafts, and the append-only sink contract
// against which completed transactions are committed.
package ledger

import "fmt"

// Field identifies one collectible column of a transaction draft.
type Field string

const (
	FieldDate     Field = "date"
	FieldOutflow  Field = "outflow"
	FieldInflow   Field = "inflow"
	FieldCategory Field = "category"
	FieldAccount  Field = "account"
	FieldMemo     Field = "memo"
)

// fieldOrder is the canonical column order: rendering, menus, and the
// appended sheet row all follow it.
var fieldOrder = []Field{
	FieldDate,
	FieldOutflow,
	FieldInflow,
	FieldCategory,
	FieldAccount,
	FieldMemo,
}

// Fields returns the collectible fields in canonical order.
func Fields() []Field {
	out := make([]Field, len(fieldOrder))
	copy(out, fieldOrder)
	return out
}

// ParseField converts a stored string back into a Field.
func ParseField(s string) (Field, error) {
	for _, f := range fieldOrder {
		if Field(s) == f {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown draft field: %q", s)
}

// Label returns the field name as shown to the user ("Outflow", "Memo", ...).
func (f Field) Label() string {
	if f == "" {
		return ""
	}

	s := string(f)
	return string(s[0]-'a'+'A') + s[1:]
}

// IsAmount reports whether the field holds a monetary value.
func (f Field) IsAmount() bool {
	return f == FieldOutflow || f == FieldInflow
}

// IsDigits reports whether s is a non-empty run of ASCII digits. Amount
// fields accept only such tokens, so parsing can never fail downstream.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// Draft is the in-progress transaction for a single user. An empty string
// means the field has not been supplied yet.
type Draft struct {
	Date     string `json:"date"`
	Outflow  string `json:"outflow"`
	Inflow   string `json:"inflow"`
	Category string `json:"category"`
	Account  string `json:"account"`
	Memo     string `json:"memo"`
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{}
}

// Get returns the current value of the field, "" when unset.
func (d *Draft) Get(f Field) string {
	switch f {
	case FieldDate:
		return d.Date
	case FieldOutflow:
		return d.Outflow
	case FieldInflow:
		return d.Inflow
	case FieldCategory:
		return d.Category
	case FieldAccount:
		return d.Account
	case FieldMemo:
		return d.Memo
	default:
		return ""
	}
}

// Set overwrites the field unconditionally. Validation happens at the
// input boundary, not here.
func (d *Draft) Set(f Field, value string) {
	switch f {
	case FieldDate:
		d.Date = value
	case FieldOutflow:
		d.Outflow = value
	case FieldInflow:
		d.Inflow = value
	case FieldCategory:
		d.Category = value
	case FieldAccount:
		d.Account = value
	case FieldMemo:
		d.Memo = value
	}
}

// Reset clears every field back to its unset value.
func (d *Draft) Reset() {
	*d = Draft{}
}

// Record is one committed transaction row in canonical column order.
type Record []string

// Record materializes the draft as a sheet row.
func (d *Draft) Record() Record {
	rec := make(Record, 0, len(fieldOrder))
	for _, f := range fieldOrder {
		rec = append(rec, d.Get(f))
	}

	return rec
}
