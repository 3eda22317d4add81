package match

import "testing"

func squad(n int) []RosterEntry {
	roster := make([]RosterEntry, 0, n)
	for i := 1; i <= n; i++ {
		roster = append(roster, RosterEntry{ID: i, Name: "Player " + string(rune('A'+i-1))})
	}
	return roster
}

func mustCreate(t *testing.T, n int) Match {
	t.Helper()
	decision := Create(1700000000000, squad(n), Meta{Opponent: "City FC"})
	if decision.Rejected() {
		t.Fatalf("create rejected: %+v", decision.Rejections)
	}
	return decision.State
}

func mustApply(t *testing.T, state Match, actions ...Action) Match {
	t.Helper()
	for _, act := range actions {
		decision := Apply(state, act)
		if decision.Rejected() {
			t.Fatalf("%s rejected: %+v", act.Type(), decision.Rejections)
		}
		state = decision.State
	}
	return state
}

func ticks(state Match, n int) Match {
	for i := 0; i < n; i++ {
		state = Apply(state, Tick{}).State
	}
	return state
}

func player(t *testing.T, state Match, id int) Player {
	t.Helper()
	p, ok := state.Player(id)
	if !ok {
		t.Fatalf("player %d not found", id)
	}
	return p
}
