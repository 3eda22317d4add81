package season

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
)

// Decide returns the decision for act against state. now supplies the clock
// used for new match ids.
func Decide(state State, act Action, now func() time.Time) Decision {
	if now == nil {
		now = time.Now
	}
	switch a := act.(type) {
	case SetTeamTitle:
		title := strings.TrimSpace(a.Title)
		if title == "" {
			return reject(state, RejectionTeamTitleRequired, "team title is required")
		}
		next := state.Clone()
		next.TeamTitle = title
		return accept(next)
	case AddSquadPlayer:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return reject(state, RejectionPlayerNameRequired, "player name is required")
		}
		next := state.Clone()
		next.Squad = append(next.Squad, SquadPlayer{ID: next.NextPlayerID, Name: name})
		next.NextPlayerID++
		return accept(next)
	case RemoveSquadPlayer:
		idx := state.squadIndex(a.PlayerID)
		if idx < 0 {
			return rejectSquadPlayer(state, a.PlayerID)
		}
		next := state.Clone()
		next.Squad = append(next.Squad[:idx], next.Squad[idx+1:]...)
		return accept(next)
	case RenameSquadPlayer:
		idx := state.squadIndex(a.PlayerID)
		if idx < 0 {
			return rejectSquadPlayer(state, a.PlayerID)
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return reject(state, RejectionPlayerNameRequired, "player name is required")
		}
		next := state.Clone()
		next.Squad[idx].Name = name
		return accept(next)
	case ReorderSquad:
		return decideReorder(state, a)
	case CreateMatch:
		return decideCreateMatch(state, a, now)
	case SelectMatch:
		if state.matchIndex(a.MatchID) < 0 {
			return rejectMatch(state, a.MatchID)
		}
		next := state.Clone()
		next.CurrentID = a.MatchID
		return accept(next)
	case CloseMatch:
		next := state.Clone()
		next.CurrentID = 0
		return accept(next)
	case DeleteMatch:
		idx := state.matchIndex(a.MatchID)
		if idx < 0 {
			return rejectMatch(state, a.MatchID)
		}
		next := state.Clone()
		next.Matches = append(next.Matches[:idx], next.Matches[idx+1:]...)
		if next.CurrentID == a.MatchID {
			next.CurrentID = 0
		}
		return accept(next)
	case ApplyToCurrent:
		return decideApplyToCurrent(state, a)
	case nil:
		return reject(state, RejectionUnknownAction, "action is required")
	default:
		return reject(state, RejectionUnknownAction, fmt.Sprintf("unsupported action %q", act.Type()))
	}
}

func decideReorder(state State, a ReorderSquad) Decision {
	n := len(state.Squad)
	if a.From < 0 || a.From >= n || a.To < 0 || a.To >= n {
		return reject(state, RejectionInvalidReorder, fmt.Sprintf("cannot move %d to %d in a squad of %d", a.From, a.To, n))
	}
	next := state.Clone()
	moved := next.Squad[a.From]
	next.Squad = append(next.Squad[:a.From], next.Squad[a.From+1:]...)
	next.Squad = append(next.Squad[:a.To], append([]SquadPlayer{moved}, next.Squad[a.To:]...)...)
	return accept(next)
}

// decideCreateMatch derives the id from the wall clock in milliseconds and
// bumps it past any id already in use.
func decideCreateMatch(state State, a CreateMatch, now func() time.Time) Decision {
	id := now().UnixMilli()
	for state.matchIndex(id) >= 0 {
		id++
	}
	created := match.Create(id, state.Roster(), match.Meta{
		Opponent:    a.Opponent,
		Venue:       a.Venue,
		Date:        a.Date,
		Description: a.Description,
		Tag:         a.Tag,
	})
	if created.Rejected() {
		return Decision{State: state, Rejections: created.Rejections}
	}
	next := state.Clone()
	next.Matches = append(next.Matches, created.State)
	next.CurrentID = id
	return accept(next, created.Warnings...)
}

func decideApplyToCurrent(state State, a ApplyToCurrent) Decision {
	idx := -1
	if state.CurrentID != 0 {
		idx = state.matchIndex(state.CurrentID)
	}
	if idx < 0 {
		return reject(state, RejectionNoCurrentMatch, "no match is selected")
	}
	decided := match.Apply(state.Matches[idx], a.Action)
	if decided.Rejected() {
		return Decision{State: state, Rejections: decided.Rejections}
	}
	next := state.Clone()
	next.Matches[idx] = decided.State
	return accept(next, decided.Warnings...)
}

func rejectSquadPlayer(state State, id int) Decision {
	return reject(state, RejectionPlayerNotFound, fmt.Sprintf("squad player %d not found", id))
}

func rejectMatch(state State, id int64) Decision {
	return reject(state, RejectionMatchNotFound, fmt.Sprintf("match %d not found", id))
}
