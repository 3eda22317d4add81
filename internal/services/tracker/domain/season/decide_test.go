package season

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
)

func fixedNow(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func mustDecide(t *testing.T, state State, now func() time.Time, actions ...Action) State {
	t.Helper()
	for _, act := range actions {
		decision := Decide(state, act, now)
		if decision.Rejected() {
			t.Fatalf("%s rejected: %+v", act.Type(), decision.Rejections)
		}
		state = decision.State
	}
	return state
}

func twelvePlayers() State {
	names := make([]string, 12)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	return NewState("U10 Academy", names...)
}

func TestNewState(t *testing.T) {
	state := NewState("", "Ana", "Ben")
	if state.TeamTitle != DefaultTeamTitle {
		t.Fatalf("title = %q, want %q", state.TeamTitle, DefaultTeamTitle)
	}
	want := []SquadPlayer{{ID: 0, Name: "Ana"}, {ID: 1, Name: "Ben"}}
	if !reflect.DeepEqual(state.Squad, want) || state.NextPlayerID != 2 {
		t.Fatalf("squad = %+v next = %d", state.Squad, state.NextPlayerID)
	}
	if _, ok := state.Current(); ok {
		t.Fatal("fresh season should have no current match")
	}
}

func TestSquadActions(t *testing.T) {
	state := NewState("Team", "Ana", "Ben", "Cai")
	state = mustDecide(t, state, nil,
		AddSquadPlayer{Name: " Dee "},
		RenameSquadPlayer{PlayerID: 1, Name: "Benny"},
		RemoveSquadPlayer{PlayerID: 0},
		ReorderSquad{From: 2, To: 0},
		SetTeamTitle{Title: "North Star"},
	)

	want := []SquadPlayer{{ID: 3, Name: "Dee"}, {ID: 1, Name: "Benny"}, {ID: 2, Name: "Cai"}}
	if !reflect.DeepEqual(state.Squad, want) {
		t.Fatalf("squad = %+v, want %+v", state.Squad, want)
	}
	if state.NextPlayerID != 4 || state.TeamTitle != "North Star" {
		t.Fatalf("next = %d title = %q", state.NextPlayerID, state.TeamTitle)
	}
}

func TestSquadActions_Rejections(t *testing.T) {
	state := NewState("Team", "Ana")
	tests := []struct {
		name string
		act  Action
		code string
	}{
		{"empty title", SetTeamTitle{Title: " "}, RejectionTeamTitleRequired},
		{"empty name", AddSquadPlayer{}, RejectionPlayerNameRequired},
		{"unknown remove", RemoveSquadPlayer{PlayerID: 9}, RejectionPlayerNotFound},
		{"unknown rename", RenameSquadPlayer{PlayerID: 9, Name: "X"}, RejectionPlayerNotFound},
		{"reorder out of range", ReorderSquad{From: 0, To: 3}, RejectionInvalidReorder},
		{"select unknown", SelectMatch{MatchID: 5}, RejectionMatchNotFound},
		{"delete unknown", DeleteMatch{MatchID: 5}, RejectionMatchNotFound},
		{"apply without current", ApplyToCurrent{Action: match.Tick{}}, RejectionNoCurrentMatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Decide(state, tc.act, nil)
			if !decision.Rejected() || decision.Rejections[0].Code != tc.code {
				t.Fatalf("rejections = %+v, want %s", decision.Rejections, tc.code)
			}
			if !reflect.DeepEqual(decision.State, state) {
				t.Fatal("rejected action changed state")
			}
		})
	}
}

func TestCreateMatch_SelectsNewMatchWithUniqueID(t *testing.T) {
	now := fixedNow(1700000000000)
	state := mustDecide(t, twelvePlayers(), now,
		CreateMatch{Opponent: "City FC"},
		CreateMatch{Opponent: "Rovers", Venue: match.VenueAway},
	)

	if len(state.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(state.Matches))
	}
	if state.Matches[0].ID != 1700000000000 || state.Matches[1].ID != 1700000000001 {
		t.Fatalf("ids = %d, %d", state.Matches[0].ID, state.Matches[1].ID)
	}
	current, ok := state.Current()
	if !ok || current.Opponent != "Rovers" {
		t.Fatalf("current = %+v, %v", current.Meta, ok)
	}
	starters := 0
	for _, p := range current.Players {
		if p.Starting {
			starters++
		}
	}
	if len(current.Players) != 12 || starters != match.StartingLineupSize {
		t.Fatalf("players = %d starters = %d", len(current.Players), starters)
	}
}

func TestCreateMatch_PropagatesMatchRejection(t *testing.T) {
	state := twelvePlayers()
	decision := Decide(state, CreateMatch{Opponent: ""}, fixedNow(1))
	if !decision.Rejected() || decision.Rejections[0].Code != match.RejectionOpponentRequired {
		t.Fatalf("rejections = %+v", decision.Rejections)
	}
	if len(decision.State.Matches) != 0 {
		t.Fatal("rejected create added a match")
	}
}

func TestApplyToCurrent_WritesBackIntoMatches(t *testing.T) {
	state := mustDecide(t, twelvePlayers(), fixedNow(10), CreateMatch{Opponent: "City FC"})
	state = mustDecide(t, state, nil,
		ApplyToCurrent{Action: match.Start{}},
		ApplyToCurrent{Action: match.Tick{}},
		ApplyToCurrent{Action: match.UpdateStat{PlayerID: 0, Stat: match.StatGoals, Delta: 1}},
	)

	current, _ := state.Current()
	if current.ElapsedSeconds != 1 || current.TeamGoals != 1 {
		t.Fatalf("current = elapsed %d goals %d", current.ElapsedSeconds, current.TeamGoals)
	}
	if !reflect.DeepEqual(state.Matches[0], current) {
		t.Fatal("matches entry diverged from current match")
	}
}

func TestApplyToCurrent_CarriesWarnings(t *testing.T) {
	state := mustDecide(t, twelvePlayers(), fixedNow(10), CreateMatch{Opponent: "City FC"}, ApplyToCurrent{Action: match.Start{}})
	decision := Decide(state, ApplyToCurrent{Action: match.SubOn{PlayerID: 0}}, nil)
	if len(decision.Warnings) != 1 || decision.Warnings[0].Code != match.WarningDuplicateOn {
		t.Fatalf("warnings = %+v", decision.Warnings)
	}
}

func TestApplyToCurrent_RejectionLeavesSeasonUntouched(t *testing.T) {
	state := mustDecide(t, twelvePlayers(), fixedNow(10), CreateMatch{Opponent: "City FC"})
	decision := Decide(state, ApplyToCurrent{Action: match.SubOff{PlayerID: 77}}, nil)
	if !decision.Rejected() || decision.Rejections[0].Code != match.RejectionPlayerNotFound {
		t.Fatalf("rejections = %+v", decision.Rejections)
	}
	if !reflect.DeepEqual(decision.State, state) {
		t.Fatal("state changed")
	}
}

func TestSelectCloseAndDeleteMatch(t *testing.T) {
	state := mustDecide(t, twelvePlayers(), fixedNow(100), CreateMatch{Opponent: "A"}, CreateMatch{Opponent: "B"})
	first := state.Matches[0].ID

	state = mustDecide(t, state, nil, SelectMatch{MatchID: first})
	if state.CurrentID != first {
		t.Fatalf("current = %d, want %d", state.CurrentID, first)
	}
	state = mustDecide(t, state, nil, CloseMatch{})
	if _, ok := state.Current(); ok {
		t.Fatal("close should clear the selection")
	}

	state = mustDecide(t, state, nil, SelectMatch{MatchID: first}, DeleteMatch{MatchID: first})
	if state.CurrentID != 0 || len(state.Matches) != 1 || state.Matches[0].Opponent != "B" {
		t.Fatalf("after delete: current = %d matches = %d", state.CurrentID, len(state.Matches))
	}
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	state := mustDecide(t, twelvePlayers(), fixedNow(100), CreateMatch{Opponent: "A"})
	before := state.Clone()

	_ = Decide(state, ReorderSquad{From: 0, To: 5}, nil)
	_ = Decide(state, RemoveSquadPlayer{PlayerID: 3}, nil)
	_ = Decide(state, ApplyToCurrent{Action: match.Start{}}, nil)
	_ = Decide(state, DeleteMatch{MatchID: state.CurrentID}, nil)

	if !reflect.DeepEqual(state, before) {
		t.Fatal("decide mutated its input")
	}
}

func TestParseAction(t *testing.T) {
	act, err := ParseAction(ActionReorderSquad, json.RawMessage(`{"from":3,"to":1}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if act != (ReorderSquad{From: 3, To: 1}) {
		t.Fatalf("action = %+v", act)
	}
	if _, err := ParseAction(ActionApplyToCurrent, nil); !errors.Is(err, ErrUnknownActionType) {
		t.Fatalf("err = %v, want ErrUnknownActionType", err)
	}
}
