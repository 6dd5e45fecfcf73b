package ledger

import "testing"

func TestDraftGetSet(t *testing.T) {
	d := NewDraft()

	for _, f := range Fields() {
		if got := d.Get(f); got != "" {
			t.Fatalf("new draft field %s = %q, want empty", f, got)
		}
	}

	d.Set(FieldOutflow, "1500")
	d.Set(FieldMemo, "taxi fare")

	if got := d.Get(FieldOutflow); got != "1500" {
		t.Errorf("Get(outflow) = %q, want %q", got, "1500")
	}
	if got := d.Get(FieldMemo); got != "taxi fare" {
		t.Errorf("Get(memo) = %q, want %q", got, "taxi fare")
	}

	d.Set(FieldOutflow, "200")
	if got := d.Get(FieldOutflow); got != "200" {
		t.Errorf("Set should overwrite unconditionally, got %q", got)
	}
}

func TestDraftReset(t *testing.T) {
	d := NewDraft()
	for _, f := range Fields() {
		d.Set(f, "x")
	}

	d.Reset()

	for _, f := range Fields() {
		if got := d.Get(f); got != "" {
			t.Errorf("after Reset field %s = %q, want empty", f, got)
		}
	}
}

func TestDraftRecordOrder(t *testing.T) {
	d := &Draft{
		Date:     "08/29/26",
		Outflow:  "1500",
		Inflow:   "",
		Category: "Transport",
		Account:  "Cash",
		Memo:     "taxi fare",
	}

	want := Record{"08/29/26", "1500", "", "Transport", "Cash", "taxi fare"}
	got := d.Record()

	if len(got) != len(want) {
		t.Fatalf("record length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseField(t *testing.T) {
	for _, f := range Fields() {
		parsed, err := ParseField(string(f))
		if err != nil {
			t.Fatalf("ParseField(%q) returned error: %v", f, err)
		}
		if parsed != f {
			t.Errorf("ParseField(%q) = %q", f, parsed)
		}
	}

	if _, err := ParseField("balance"); err == nil {
		t.Error("ParseField should reject unknown field names")
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1500", true},
		{"0", true},
		{"007", true},
		{"", false},
		{"-5", false},
		{"12.5", false},
		{"1 500", false},
		{"abc", false},
		{"1e3", false},
	}

	for _, tt := range tests {
		if got := IsDigits(tt.input); got != tt.want {
			t.Errorf("IsDigits(%q) = %t, want %t", tt.input, got, tt.want)
		}
	}
}

func TestFieldLabel(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{FieldDate, "Date"},
		{FieldOutflow, "Outflow"},
		{FieldMemo, "Memo"},
	}

	for _, tt := range tests {
		if got := tt.field.Label(); got != tt.want {
			t.Errorf("Label(%s) = %q, want %q", tt.field, got, tt.want)
		}
	}
}
