// Package snapshot encodes and decodes the persisted season payload.
package snapshot

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/louisbranch/pitchside/internal/platform/errors"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
)

// ErrMalformed matches any decode failure via errors.Is.
var ErrMalformed = apperrors.New(apperrors.CodeSnapshotMalformed, "snapshot malformed")

// Encode serializes a season. The selected match is written both inside
// matches and as currentMatch.
func Encode(state season.State) ([]byte, error) {
	env := envelope{
		Matches:      make([]wireMatch, 0, len(state.Matches)),
		Squad:        make([]wireSquad, 0, len(state.Squad)),
		NextPlayerID: state.NextPlayerID,
		TeamTitle:    state.TeamTitle,
	}
	for _, p := range state.Squad {
		env.Squad = append(env.Squad, wireSquad{ID: p.ID, Name: p.Name})
	}
	for _, m := range state.Matches {
		env.Matches = append(env.Matches, encodeMatch(m))
	}
	if current, ok := state.Current(); ok {
		wm := encodeMatch(current)
		env.CurrentMatch = &wm
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a payload. A currentMatch replaces the entry
// with the same id in matches, or is appended when matches lacks it.
func Decode(data []byte) (season.State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return season.State{}, apperrors.Wrap(apperrors.CodeSnapshotMalformed, "decode snapshot", err)
	}

	state := season.State{
		TeamTitle:    env.TeamTitle,
		NextPlayerID: env.NextPlayerID,
	}
	if state.TeamTitle == "" {
		state.TeamTitle = season.DefaultTeamTitle
	}
	seenSquad := make(map[int]struct{}, len(env.Squad))
	for _, p := range env.Squad {
		if _, dup := seenSquad[p.ID]; dup {
			return season.State{}, malformed(fmt.Errorf("duplicate squad id %d", p.ID))
		}
		seenSquad[p.ID] = struct{}{}
		state.Squad = append(state.Squad, season.SquadPlayer{ID: p.ID, Name: p.Name})
		if p.ID >= state.NextPlayerID {
			state.NextPlayerID = p.ID + 1
		}
	}

	seenMatch := make(map[int64]int, len(env.Matches))
	for _, wm := range env.Matches {
		m, err := decodeMatch(wm)
		if err != nil {
			return season.State{}, malformed(err)
		}
		if _, dup := seenMatch[m.ID]; dup {
			return season.State{}, malformed(fmt.Errorf("duplicate match id %d", m.ID))
		}
		seenMatch[m.ID] = len(state.Matches)
		state.Matches = append(state.Matches, m)
	}
	if env.CurrentMatch != nil {
		current, err := decodeMatch(*env.CurrentMatch)
		if err != nil {
			return season.State{}, malformed(fmt.Errorf("current match: %w", err))
		}
		if i, ok := seenMatch[current.ID]; ok {
			state.Matches[i] = current
		} else {
			state.Matches = append(state.Matches, current)
		}
		state.CurrentID = current.ID
	}
	return state, nil
}

func malformed(err error) error {
	return apperrors.Wrap(apperrors.CodeSnapshotMalformed, "validate snapshot", err)
}

func encodeMatch(m match.Match) wireMatch {
	wm := wireMatch{
		ID:            m.ID,
		Opponent:      m.Opponent,
		Venue:         string(m.Venue),
		Date:          m.Date,
		Description:   m.Description,
		Tag:           m.Tag,
		Players:       make([]wirePlayer, 0, len(m.Players)),
		Status:        string(m.Status),
		TeamGoals:     m.TeamGoals,
		OpponentGoals: m.OpponentGoals,
		MatchSeconds:  m.ElapsedSeconds,
		MatchRunning:  m.ClockRunning,
	}
	for _, p := range m.Players {
		wp := wirePlayer{
			ID:       p.ID,
			Name:     p.Name,
			Seconds:  p.AccumulatedSeconds,
			Running:  p.TimerRunning,
			Starting: p.Starting,
			OnField:  p.OnField,
			Goals:    p.Goals,
			Assists:  p.Assists,
			Notes:    p.Notes,
			Position: encodePlayerPosition(p.Position),
			Events:   make([]wireEvent, 0, len(p.Events)),
		}
		for _, e := range p.Events {
			wp.Events = append(wp.Events, wireEvent{
				Type: string(e.Kind),
				At:   e.At,
				From: encodePosition(e.From),
				To:   encodePosition(e.To),
			})
		}
		wm.Players = append(wm.Players, wp)
	}
	return wm
}

func decodeMatch(wm wireMatch) (match.Match, error) {
	if wm.ID <= 0 {
		return match.Match{}, fmt.Errorf("match id %d must be positive", wm.ID)
	}
	venue := match.Venue(wm.Venue)
	if venue == "" {
		venue = match.VenueHome
	}
	if !venue.Valid() {
		return match.Match{}, fmt.Errorf("match %d: unknown venue %q", wm.ID, wm.Venue)
	}
	m := match.Match{
		ID: wm.ID,
		Meta: match.Meta{
			Opponent:    wm.Opponent,
			Venue:       venue,
			Date:        wm.Date,
			Description: wm.Description,
			Tag:         wm.Tag,
		},
		Status:         match.Status(wm.Status),
		TeamGoals:      wm.TeamGoals,
		OpponentGoals:  wm.OpponentGoals,
		ElapsedSeconds: wm.MatchSeconds,
		ClockRunning:   wm.MatchRunning,
	}
	for _, wp := range wm.Players {
		p := match.Player{
			ID:                 wp.ID,
			Name:               wp.Name,
			AccumulatedSeconds: wp.Seconds,
			TimerRunning:       wp.Running,
			Starting:           wp.Starting,
			OnField:            wp.OnField,
			Goals:              wp.Goals,
			Assists:            wp.Assists,
			Notes:              wp.Notes,
		}
		if wp.Position != nil {
			p.Position = match.Position{Role: wp.Position.Role, Side: wp.Position.Side}
		}
		for _, we := range wp.Events {
			p.Events = append(p.Events, match.Event{
				Kind: match.EventKind(we.Type),
				At:   we.At,
				From: decodePosition(we.From),
				To:   decodePosition(we.To),
			})
		}
		m.Players = append(m.Players, p)
	}
	if err := m.Validate(); err != nil {
		return match.Match{}, err
	}
	return m, nil
}

func encodePlayerPosition(p match.Position) *wirePosition {
	if p == (match.Position{}) {
		return nil
	}
	return &wirePosition{Role: p.Role, Side: p.Side}
}

func encodePosition(p *match.Position) *wirePosition {
	if p == nil {
		return nil
	}
	return &wirePosition{Role: p.Role, Side: p.Side}
}

func decodePosition(p *wirePosition) *match.Position {
	if p == nil {
		return nil
	}
	return &match.Position{Role: p.Role, Side: p.Side}
}

// EncodeMatch serializes one match in the same shape used inside a snapshot.
func EncodeMatch(m match.Match) ([]byte, error) {
	data, err := json.Marshal(encodeMatch(m))
	if err != nil {
		return nil, fmt.Errorf("encode match %d: %w", m.ID, err)
	}
	return data, nil
}
