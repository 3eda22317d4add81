package match

// Rejection codes returned when an action leaves the match unchanged.
const (
	RejectionUnknownAction     = "MATCH_UNKNOWN_ACTION"
	RejectionOpponentRequired  = "MATCH_OPPONENT_REQUIRED"
	RejectionInvalidVenue      = "MATCH_INVALID_VENUE"
	RejectionNotInSetup        = "MATCH_NOT_IN_SETUP"
	RejectionNotLive           = "MATCH_NOT_LIVE"
	RejectionClockPaused       = "MATCH_CLOCK_PAUSED"
	RejectionPlayerNotFound    = "MATCH_PLAYER_NOT_FOUND"
	RejectionPlayerNameEmpty   = "MATCH_PLAYER_NAME_REQUIRED"
	RejectionInvalidStat       = "MATCH_INVALID_STAT"
	RejectionInvalidDelta      = "MATCH_INVALID_DELTA"
	RejectionInvalidScoreField = "MATCH_INVALID_SCORE_FIELD"
)

// Warning codes attached to accepted decisions.
const (
	WarningDuplicateOn       = "MATCH_DUPLICATE_ON"
	WarningDuplicateRosterID = "MATCH_DUPLICATE_ROSTER_ID"
)

// Decision is the outcome of applying one action.
type Decision struct {
	// State is the next match value, or the input value when rejected.
	State      Match
	Rejections []Rejection
	// Warnings are non-fatal notices about an accepted transition.
	Warnings []Warning
}

// Rejection captures why an action was not applied.
type Rejection struct {
	Code    string
	Message string
}

// Warning flags an accepted transition that is likely unintended.
type Warning struct {
	Code    string
	Message string
}

// Rejected reports whether the action was declined.
func (d Decision) Rejected() bool {
	return len(d.Rejections) > 0
}

func accept(state Match, warnings ...Warning) Decision {
	return Decision{State: state, Warnings: append([]Warning(nil), warnings...)}
}

func reject(state Match, code, message string) Decision {
	return Decision{State: state, Rejections: []Rejection{{Code: code, Message: message}}}
}
