package match

import (
	"fmt"
	"strings"
)

// StartingLineupSize is how many roster entries start on the field.
const StartingLineupSize = 11

// Status is the lifecycle stage of a match.
type Status string

const (
	StatusSetup     Status = "setup"
	StatusLive      Status = "live"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	switch s {
	case StatusSetup, StatusLive, StatusCompleted:
		return true
	default:
		return false
	}
}

// Venue says whether the match is played at home or away.
type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

// Valid reports whether v is a known venue.
func (v Venue) Valid() bool {
	return v == VenueHome || v == VenueAway
}

// Meta is the descriptive part of a match.
type Meta struct {
	Opponent    string
	Venue       Venue
	Date        string
	Description string
	Tag         string
}

// Match is the consistency boundary for one match: roster, clock and score.
type Match struct {
	// ID identifies the match within a season.
	ID int64
	Meta
	Status Status
	// Players is the roster arena; player ids are unique within it only.
	Players []Player
	// TeamGoals is tracked independently from the sum of player goals.
	TeamGoals     int
	OpponentGoals int
	// ElapsedSeconds is the match clock.
	ElapsedSeconds int
	// ClockRunning is false while the match is paused or not live.
	ClockRunning bool
}

// RosterEntry is one squad member copied into a new match.
type RosterEntry struct {
	ID   int
	Name string
}

// Player returns the player with id and whether it exists.
func (m Match) Player(id int) (Player, bool) {
	if i := m.playerIndex(id); i >= 0 {
		return m.Players[i], true
	}
	return Player{}, false
}

func (m Match) playerIndex(id int) int {
	for i := range m.Players {
		if m.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// nextPlayerID is max(existing ids, 0) + 1.
func (m Match) nextPlayerID() int {
	highest := 0
	for _, p := range m.Players {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}

// Clone returns a deep copy that shares no slices with m.
func (m Match) Clone() Match {
	next := m
	if m.Players != nil {
		next.Players = make([]Player, len(m.Players))
		for i, p := range m.Players {
			next.Players[i] = p.clone()
		}
	}
	return next
}

// Validate checks the structural invariants a persisted match must satisfy.
func (m Match) Validate() error {
	if !m.Status.Valid() {
		return fmt.Errorf("match %d: unknown status %q", m.ID, m.Status)
	}
	if m.TeamGoals < 0 || m.OpponentGoals < 0 {
		return fmt.Errorf("match %d: negative score", m.ID)
	}
	if m.ElapsedSeconds < 0 {
		return fmt.Errorf("match %d: negative elapsed seconds", m.ID)
	}
	seen := make(map[int]struct{}, len(m.Players))
	for _, p := range m.Players {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("match %d: duplicate player id %d", m.ID, p.ID)
		}
		seen[p.ID] = struct{}{}
		if err := p.validate(); err != nil {
			return fmt.Errorf("match %d: %w", m.ID, err)
		}
	}
	return nil
}

// Create builds a new match in Setup from a roster. The first
// StartingLineupSize entries are marked as starters. An empty opponent is
// rejected; repeated roster ids keep the first entry and emit a warning.
func Create(id int64, roster []RosterEntry, meta Meta) Decision {
	meta.Opponent = strings.TrimSpace(meta.Opponent)
	if meta.Opponent == "" {
		return reject(Match{}, RejectionOpponentRequired, "opponent is required")
	}
	if meta.Venue == "" {
		meta.Venue = VenueHome
	}
	if !meta.Venue.Valid() {
		return reject(Match{}, RejectionInvalidVenue, fmt.Sprintf("unknown venue %q", meta.Venue))
	}

	m := Match{ID: id, Meta: meta, Status: StatusSetup}
	var warnings []Warning
	seen := make(map[int]struct{}, len(roster))
	for _, entry := range roster {
		if _, dup := seen[entry.ID]; dup {
			warnings = append(warnings, Warning{
				Code:    WarningDuplicateRosterID,
				Message: fmt.Sprintf("roster id %d repeated; keeping first entry", entry.ID),
			})
			continue
		}
		seen[entry.ID] = struct{}{}
		m.Players = append(m.Players, Player{
			ID:       entry.ID,
			Name:     entry.Name,
			Starting: len(m.Players) < StartingLineupSize,
		})
	}
	return accept(m, warnings...)
}
