package season

import (
	"slices"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
)

// DefaultTeamTitle is used when a fresh season is created without a title.
const DefaultTeamTitle = "My Team"

// SquadPlayer is a long-lived squad member. Matches copy squad members into
// their own roster at creation time.
type SquadPlayer struct {
	ID   int
	Name string
}

// State is everything the tracker persists as one snapshot.
type State struct {
	TeamTitle string
	Squad     []SquadPlayer
	// NextPlayerID is the id handed to the next squad player.
	NextPlayerID int
	Matches      []match.Match
	// CurrentID is the id of the selected match, or zero when none is.
	CurrentID int64
}

// NewState returns the initial season used when nothing was persisted.
func NewState(teamTitle string, squadNames ...string) State {
	if teamTitle == "" {
		teamTitle = DefaultTeamTitle
	}
	state := State{TeamTitle: teamTitle}
	for _, name := range squadNames {
		state.Squad = append(state.Squad, SquadPlayer{ID: state.NextPlayerID, Name: name})
		state.NextPlayerID++
	}
	return state
}

// Current returns the selected match.
func (s State) Current() (match.Match, bool) {
	if s.CurrentID == 0 {
		return match.Match{}, false
	}
	return s.Match(s.CurrentID)
}

// Match returns the match with id.
func (s State) Match(id int64) (match.Match, bool) {
	if i := s.matchIndex(id); i >= 0 {
		return s.Matches[i], true
	}
	return match.Match{}, false
}

func (s State) matchIndex(id int64) int {
	return slices.IndexFunc(s.Matches, func(m match.Match) bool { return m.ID == id })
}

func (s State) squadIndex(id int) int {
	return slices.IndexFunc(s.Squad, func(p SquadPlayer) bool { return p.ID == id })
}

// Roster converts the squad into a match roster in squad order.
func (s State) Roster() []match.RosterEntry {
	roster := make([]match.RosterEntry, 0, len(s.Squad))
	for _, p := range s.Squad {
		roster = append(roster, match.RosterEntry{ID: p.ID, Name: p.Name})
	}
	return roster
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	next := s
	if s.Squad != nil {
		next.Squad = slices.Clone(s.Squad)
	}
	if s.Matches != nil {
		next.Matches = make([]match.Match, len(s.Matches))
		for i, m := range s.Matches {
			next.Matches[i] = m.Clone()
		}
	}
	return next
}
