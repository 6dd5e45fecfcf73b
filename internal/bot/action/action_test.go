package action_test

import (
	"errors"
	"testing"

	"github.com/aspireledger/aspire-bot/internal/bot/action"
	"github.com/aspireledger/aspire-bot/internal/ledger"
)

func TestParseRoundTrip(t *testing.T) {
	all := append(action.FieldActions(), action.Abort, action.Finish, action.Menu, action.QuickFinish)

	for _, a := range all {
		parsed, err := action.Parse(a.ID())
		if err != nil {
			t.Fatalf("Parse(%d) returned error: %v", a.ID(), err)
		}
		if parsed != a {
			t.Errorf("Parse(%d) = %+v, want %+v", a.ID(), parsed, a)
		}
	}
}

func TestParseUnknownID(t *testing.T) {
	for _, id := range []int{0, 7, 12, 99, 201, -1} {
		if _, err := action.Parse(id); !errors.Is(err, action.ErrUnknownAction) {
			t.Errorf("Parse(%d) should fail with ErrUnknownAction, got %v", id, err)
		}
	}
}

func TestWireIDsAreStable(t *testing.T) {
	tests := []struct {
		action action.Action
		want   int
	}{
		{action.ForField(ledger.FieldDate), 1},
		{action.ForField(ledger.FieldOutflow), 2},
		{action.ForField(ledger.FieldInflow), 3},
		{action.ForField(ledger.FieldCategory), 4},
		{action.ForField(ledger.FieldAccount), 5},
		{action.ForField(ledger.FieldMemo), 6},
		{action.Abort, 10},
		{action.Finish, 11},
		{action.Menu, 100},
		{action.QuickFinish, 200},
	}

	for _, tt := range tests {
		if got := tt.action.ID(); got != tt.want {
			t.Errorf("ID(%+v) = %d, want %d", tt.action, got, tt.want)
		}
	}
}

func TestFieldActionsOrder(t *testing.T) {
	actions := action.FieldActions()
	fields := ledger.Fields()

	if len(actions) != len(fields) {
		t.Fatalf("FieldActions() returned %d entries, want %d", len(actions), len(fields))
	}

	for i, a := range actions {
		if a.Kind != action.KindField || a.Field != fields[i] {
			t.Errorf("FieldActions()[%d] = %+v, want field %s", i, a, fields[i])
		}
	}
}
