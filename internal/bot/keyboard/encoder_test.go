package keyboard_test

import (
	"strings"
	"testing"

	"github.com/aspireledger/aspire-bot/internal/bot/action"
	"github.com/aspireledger/aspire-bot/internal/bot/keyboard"
	"github.com/aspireledger/aspire-bot/internal/ledger"
)

func TestEncodeCallback(t *testing.T) {
	tests := []struct {
		name      string
		unique    string
		data      string
		want      string
		wantError bool
	}{
		{
			name:   "with data",
			unique: "act",
			data:   "11",
			want:   "act:11",
		},
		{
			name:   "without data",
			unique: "save",
			data:   "",
			want:   "save",
		},
		{
			name:      "exceeds limit",
			unique:    strings.Repeat("x", keyboard.CallbackDataLimitBytes+1),
			data:      "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := keyboard.EncodeCallback(tt.unique, tt.data)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Errorf("EncodeCallback() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeCallback(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantUnique string
		wantData   string
		wantError  bool
	}{
		{name: "with payload", input: "act:2", wantUnique: "act", wantData: "2"},
		{name: "bare identifier", input: "quick_save", wantUnique: "quick_save"},
		{name: "payload with separator", input: "act:1:2", wantUnique: "act", wantData: "1:2"},
		{name: "empty", input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unique, data, err := keyboard.DecodeCallback(tt.input)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if unique != tt.wantUnique || data != tt.wantData {
				t.Errorf("DecodeCallback(%q) = (%q, %q), want (%q, %q)",
					tt.input, unique, data, tt.wantUnique, tt.wantData)
			}
		})
	}
}

func TestActionPayloadRoundTrip(t *testing.T) {
	all := append(action.FieldActions(), action.Abort, action.Finish, action.QuickFinish)

	for _, a := range all {
		payload := keyboard.EncodeAction(a)

		decoded, err := keyboard.DecodeAction(payload)
		if err != nil {
			t.Fatalf("DecodeAction(%q) returned error: %v", payload, err)
		}

		if decoded != a {
			t.Errorf("DecodeAction(%q) = %+v, want %+v", payload, decoded, a)
		}
	}
}

func TestDecodeActionRejectsGarbage(t *testing.T) {
	for _, payload := range []string{"act:banana", "act:999", "save", "act:", "other:1"} {
		if _, err := keyboard.DecodeAction(payload); err == nil {
			t.Errorf("DecodeAction(%q) should fail", payload)
		}
	}
}

func TestDecodeActionFieldPayload(t *testing.T) {
	got, err := keyboard.DecodeAction("act:2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := action.ForField(ledger.FieldOutflow)
	if got != want {
		t.Errorf("DecodeAction(act:2) = %+v, want %+v", got, want)
	}
}
