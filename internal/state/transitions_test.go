package state

import "testing"

func TestIsTransitionAllowed(t *testing.T) {
	testCases := []struct {
		name     string
		from     State
		to       State
		expected bool
	}{
		{name: "idle to menu", from: StateIdle, to: StateMenu, expected: true},
		{name: "idle to quick confirm", from: StateIdle, to: StateQuickConfirm, expected: true},
		{name: "menu to editing", from: StateMenu, to: StateEditing, expected: true},
		{name: "editing stays editing", from: StateEditing, to: StateEditing, expected: true},
		{name: "editing back to menu", from: StateEditing, to: StateMenu, expected: true},
		{name: "menu to idle cancel", from: StateMenu, to: StateIdle, expected: true},
		{name: "editing to idle cancel", from: StateEditing, to: StateIdle, expected: true},
		{name: "quick confirm to idle", from: StateQuickConfirm, to: StateIdle, expected: true},
		{name: "idle to editing invalid", from: StateIdle, to: StateEditing, expected: false},
		{name: "menu to quick confirm invalid", from: StateMenu, to: StateQuickConfirm, expected: false},
		{name: "quick confirm to menu invalid", from: StateQuickConfirm, to: StateMenu, expected: false},
		{name: "quick confirm to editing invalid", from: StateQuickConfirm, to: StateEditing, expected: false},
		{name: "unknown state to menu invalid", from: State("unknown"), to: StateMenu, expected: false},
		{name: "any state to idle emergency", from: State("whatever"), to: StateIdle, expected: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if actual := IsTransitionAllowed(tc.from, tc.to); actual != tc.expected {
				t.Errorf("IsTransitionAllowed(%s -> %s) = %t, expected %t", tc.from, tc.to, actual, tc.expected)
			}
		})
	}
}
