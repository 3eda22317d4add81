package match

import (
	"fmt"
	"strings"
)

// Apply returns the decision for act against state.
//
// Apply is total: it never panics on well-typed input and never mutates
// state. A rejected decision carries state unchanged, so callers that only
// care about the next value can use Decision.State unconditionally.
func Apply(state Match, act Action) Decision {
	switch a := act.(type) {
	case Start:
		return decideStart(state)
	case Tick:
		return decideTick(state)
	case ToggleClock:
		return decideToggleClock(state)
	case TogglePlayerTimer:
		return decideTogglePlayerTimer(state, a)
	case SubOff:
		return decideSubOff(state, a)
	case SubOn:
		return decideSubOn(state, a)
	case UpdateStat:
		return decideUpdateStat(state, a)
	case UpdateScore:
		return decideUpdateScore(state, a)
	case UpdatePlayerPosition:
		return decideUpdatePlayerPosition(state, a)
	case End:
		return decideEnd(state)
	case AddPlayer:
		return decideAddPlayer(state, a)
	case RemovePlayer:
		return decideRemovePlayer(state, a)
	case BulkEditPlayerStats:
		return decideBulkEditPlayerStats(state, a)
	case UpdateMeta:
		return decideUpdateMeta(state, a)
	case SetDuration:
		return decideSetDuration(state, a)
	case RenamePlayer:
		return decideRenamePlayer(state, a)
	case UpdatePlayerNotes:
		return decideUpdatePlayerNotes(state, a)
	case ToggleStarting:
		return decideToggleStarting(state, a)
	case nil:
		return reject(state, RejectionUnknownAction, "action is required")
	default:
		return reject(state, RejectionUnknownAction, fmt.Sprintf("unsupported action %q", act.Type()))
	}
}

func decideStart(state Match) Decision {
	if state.Status != StatusSetup {
		return reject(state, RejectionNotInSetup, "match already started")
	}
	next := state.Clone()
	next.Status = StatusLive
	next.ClockRunning = true
	for i := range next.Players {
		p := &next.Players[i]
		p.TimerRunning = p.Starting
		p.OnField = p.Starting
		p.Events = nil
		if p.Starting {
			p.Events = []Event{{Kind: EventOn, At: next.ElapsedSeconds}}
		}
	}
	return accept(next)
}

func decideTick(state Match) Decision {
	if state.Status != StatusLive {
		return reject(state, RejectionNotLive, "match is not live")
	}
	if !state.ClockRunning {
		return reject(state, RejectionClockPaused, "match clock is paused")
	}
	next := state.Clone()
	next.ElapsedSeconds++
	for i := range next.Players {
		if next.Players[i].TimerRunning {
			next.Players[i].AccumulatedSeconds++
		}
	}
	return accept(next)
}

func decideToggleClock(state Match) Decision {
	if state.Status != StatusLive {
		return reject(state, RejectionNotLive, "match is not live")
	}
	next := state.Clone()
	next.ClockRunning = !next.ClockRunning
	return accept(next)
}

func decideTogglePlayerTimer(state Match, a TogglePlayerTimer) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	if p.TimerRunning {
		p.TimerRunning = false
		p.Events = append(p.Events, Event{Kind: EventOff, At: next.ElapsedSeconds})
		return accept(next)
	}
	p.TimerRunning = true
	p.OnField = true
	return accept(next, putOn(p, next.ElapsedSeconds)...)
}

func decideSubOff(state Match, a SubOff) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	p.TimerRunning = false
	p.OnField = false
	p.Events = append(p.Events, Event{Kind: EventOff, At: next.ElapsedSeconds})
	return accept(next)
}

// decideSubOn appends an On event even for a player already on the field so
// the audit trail records every substitution request.
func decideSubOn(state Match, a SubOn) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	p.TimerRunning = true
	p.OnField = true
	return accept(next, putOn(p, next.ElapsedSeconds)...)
}

// putOn appends an On event and warns when it supersedes an unterminated On,
// whose start the stint deriver will drop.
func putOn(p *Player, at int) []Warning {
	var warnings []Warning
	if openedAt, open := p.hasOpenStint(); open {
		warnings = append(warnings, Warning{
			Code:    WarningDuplicateOn,
			Message: fmt.Sprintf("player %d already on since %ds; earlier stint start is superseded", p.ID, openedAt),
		})
	}
	p.Events = append(p.Events, Event{Kind: EventOn, At: at})
	return warnings
}

func decideUpdateStat(state Match, a UpdateStat) Decision {
	if a.Stat != StatGoals && a.Stat != StatAssists {
		return reject(state, RejectionInvalidStat, fmt.Sprintf("unknown stat %q", a.Stat))
	}
	if a.Delta != 1 && a.Delta != -1 {
		return reject(state, RejectionInvalidDelta, fmt.Sprintf("stat delta must be +1 or -1, got %d", a.Delta))
	}
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	switch a.Stat {
	case StatGoals:
		updated := floor(p.Goals + a.Delta)
		next.TeamGoals = floor(next.TeamGoals + updated - p.Goals)
		p.Goals = updated
	case StatAssists:
		p.Assists = floor(p.Assists + a.Delta)
	}
	return accept(next)
}

func decideUpdateScore(state Match, a UpdateScore) Decision {
	next := state.Clone()
	switch a.Field {
	case ScoreTeamGoals:
		next.TeamGoals = floor(next.TeamGoals + a.Delta)
	case ScoreOpponentGoals:
		next.OpponentGoals = floor(next.OpponentGoals + a.Delta)
	default:
		return reject(state, RejectionInvalidScoreField, fmt.Sprintf("unknown score field %q", a.Field))
	}
	return accept(next)
}

// decideUpdatePlayerPosition keeps position history only while the match is
// live; outside play the position is overwritten silently.
func decideUpdatePlayerPosition(state Match, a UpdatePlayerPosition) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	from := p.Position
	to := Position{Role: strings.TrimSpace(a.Role), Side: strings.TrimSpace(a.Side)}
	changed := from != to
	anyRole := from.Role != "" || to.Role != ""
	if next.Status == StatusLive && changed && anyRole {
		p.Events = append(p.Events, Event{
			Kind: EventPosition,
			At:   next.ElapsedSeconds,
			From: &from,
			To:   &to,
		})
	}
	p.Position = to
	return accept(next)
}

func decideEnd(state Match) Decision {
	if state.Status != StatusLive {
		return reject(state, RejectionNotLive, "match is not live")
	}
	next := state.Clone()
	for i := range next.Players {
		p := &next.Players[i]
		if p.TimerRunning {
			p.Events = append(p.Events, Event{Kind: EventOff, At: next.ElapsedSeconds})
			p.TimerRunning = false
		}
	}
	next.Status = StatusCompleted
	next.ClockRunning = false
	return accept(next)
}

func decideAddPlayer(state Match, a AddPlayer) Decision {
	next := state.Clone()
	id := next.nextPlayerID()
	name := strings.TrimSpace(a.Name)
	if name == "" {
		name = fmt.Sprintf("Player %d", id+1)
	}
	next.Players = append(next.Players, Player{ID: id, Name: name})
	return accept(next)
}

func decideRemovePlayer(state Match, a RemovePlayer) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	next.Players = append(next.Players[:idx], next.Players[idx+1:]...)
	return accept(next)
}

func decideBulkEditPlayerStats(state Match, a BulkEditPlayerStats) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	p := &next.Players[idx]
	goals := floor(a.Goals)
	next.TeamGoals = floor(next.TeamGoals + goals - p.Goals)
	p.AccumulatedSeconds = floor(a.Seconds)
	p.Goals = goals
	p.Assists = floor(a.Assists)
	p.Notes = a.Notes
	return accept(next)
}

func decideUpdateMeta(state Match, a UpdateMeta) Decision {
	next := state.Clone()
	if a.Opponent != nil {
		opponent := strings.TrimSpace(*a.Opponent)
		if opponent == "" {
			return reject(state, RejectionOpponentRequired, "opponent is required")
		}
		next.Opponent = opponent
	}
	if a.Venue != nil {
		if !a.Venue.Valid() {
			return reject(state, RejectionInvalidVenue, fmt.Sprintf("unknown venue %q", *a.Venue))
		}
		next.Venue = *a.Venue
	}
	if a.Date != nil {
		next.Date = *a.Date
	}
	if a.Description != nil {
		next.Description = *a.Description
	}
	if a.Tag != nil {
		next.Tag = *a.Tag
	}
	return accept(next)
}

func decideSetDuration(state Match, a SetDuration) Decision {
	next := state.Clone()
	next.ElapsedSeconds = floor(a.Seconds)
	return accept(next)
}

func decideRenamePlayer(state Match, a RenamePlayer) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return reject(state, RejectionPlayerNameEmpty, "player name is required")
	}
	next := state.Clone()
	next.Players[idx].Name = name
	return accept(next)
}

func decideUpdatePlayerNotes(state Match, a UpdatePlayerNotes) Decision {
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	next.Players[idx].Notes = a.Notes
	return accept(next)
}

func decideToggleStarting(state Match, a ToggleStarting) Decision {
	if state.Status != StatusSetup {
		return reject(state, RejectionNotInSetup, "starting lineup is fixed once the match starts")
	}
	idx := state.playerIndex(a.PlayerID)
	if idx < 0 {
		return rejectPlayerNotFound(state, a.PlayerID)
	}
	next := state.Clone()
	next.Players[idx].Starting = !next.Players[idx].Starting
	return accept(next)
}

func rejectPlayerNotFound(state Match, id int) Decision {
	return reject(state, RejectionPlayerNotFound, fmt.Sprintf("player %d not found", id))
}

func floor(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
