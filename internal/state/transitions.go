package state

// validTransitions contains the permitted forward transitions of the
// conversation FSM. Returning to idle is always allowed (cancel path) and is
// handled in IsTransitionAllowed directly.
var validTransitions = map[State][]State{
	StateIdle: {
		StateMenu,
		StateQuickConfirm,
	},
	StateMenu: {
		StateEditing,
	},
	StateEditing: {
		StateEditing,
		StateMenu,
	},
	StateQuickConfirm: {},
}

// IsTransitionAllowed reports whether moving from one state to another is valid.
func IsTransitionAllowed(from, to State) bool {
	if to == StateIdle {
		return true
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, s := range allowed {
		if s == to {
			return true
		}
	}

	return false
}
