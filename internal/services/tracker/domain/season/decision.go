package season

import "github.com/louisbranch/pitchside/internal/services/tracker/domain/match"

const (
	RejectionUnknownAction      = "SEASON_UNKNOWN_ACTION"
	RejectionTeamTitleRequired  = "SEASON_TEAM_TITLE_REQUIRED"
	RejectionPlayerNameRequired = "SEASON_PLAYER_NAME_REQUIRED"
	RejectionPlayerNotFound     = "SEASON_PLAYER_NOT_FOUND"
	RejectionInvalidReorder     = "SEASON_INVALID_REORDER"
	RejectionMatchNotFound      = "SEASON_MATCH_NOT_FOUND"
	RejectionNoCurrentMatch     = "SEASON_NO_CURRENT_MATCH"
)

// Decision is the outcome of a season action. Rejections and warnings from
// a routed match action are carried through unchanged.
type Decision struct {
	State      State
	Rejections []match.Rejection
	Warnings   []match.Warning
}

// Rejected reports whether the action was declined.
func (d Decision) Rejected() bool {
	return len(d.Rejections) > 0
}

func accept(state State, warnings ...match.Warning) Decision {
	return Decision{State: state, Warnings: append([]match.Warning(nil), warnings...)}
}

func reject(state State, code, message string) Decision {
	return Decision{State: state, Rejections: []match.Rejection{{Code: code, Message: message}}}
}
