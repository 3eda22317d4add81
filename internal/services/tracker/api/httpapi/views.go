package httpapi

import (
	"encoding/json"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
	"github.com/louisbranch/pitchside/internal/services/tracker/syncqueue"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type noticeView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type decisionResponse struct {
	State      json.RawMessage `json:"state,omitempty"`
	Rejections []noticeView    `json:"rejections"`
	Warnings   []noticeView    `json:"warnings"`
}

func rejectionsView(in []match.Rejection) []noticeView {
	out := make([]noticeView, 0, len(in))
	for _, r := range in {
		out = append(out, noticeView{Code: r.Code, Message: r.Message})
	}
	return out
}

func warningsView(in []match.Warning) []noticeView {
	out := make([]noticeView, 0, len(in))
	for _, w := range in {
		out = append(out, noticeView{Code: w.Code, Message: w.Message})
	}
	return out
}

type stintView struct {
	On  int `json:"on"`
	Off int `json:"off"`
}

type playerSummaryView struct {
	PlayerID      int         `json:"playerId"`
	Name          string      `json:"name"`
	Starting      bool        `json:"starting"`
	Role          string      `json:"role,omitempty"`
	Side          string      `json:"side,omitempty"`
	SecondsPlayed int         `json:"secondsPlayed"`
	SecondsOff    int         `json:"secondsOff"`
	Stints        []stintView `json:"stints"`
	Goals         int         `json:"goals"`
	Assists       int         `json:"assists"`
	Notes         string      `json:"notes"`
}

type matchSummaryResponse struct {
	ID             int64               `json:"id"`
	Opponent       string              `json:"opponent"`
	Venue          string              `json:"venue"`
	Date           string              `json:"date"`
	Tag            string              `json:"tag"`
	Description    string              `json:"description"`
	Status         string              `json:"status"`
	Result         string              `json:"result"`
	TeamGoals      int                 `json:"teamGoals"`
	OpponentGoals  int                 `json:"opponentGoals"`
	ElapsedSeconds int                 `json:"matchSeconds"`
	Players        []playerSummaryView `json:"players"`
}

func matchSummaryView(s match.Summary) matchSummaryResponse {
	resp := matchSummaryResponse{
		ID:             s.ID,
		Opponent:       s.Meta.Opponent,
		Venue:          string(s.Meta.Venue),
		Date:           s.Meta.Date,
		Tag:            s.Meta.Tag,
		Description:    s.Meta.Description,
		Status:         string(s.Status),
		Result:         string(s.Result),
		TeamGoals:      s.TeamGoals,
		OpponentGoals:  s.OpponentGoals,
		ElapsedSeconds: s.ElapsedSeconds,
		Players:        make([]playerSummaryView, 0, len(s.Players)),
	}
	for _, p := range s.Players {
		view := playerSummaryView{
			PlayerID:      p.PlayerID,
			Name:          p.Name,
			Starting:      p.Starting,
			Role:          p.Position.Role,
			Side:          p.Position.Side,
			SecondsPlayed: p.SecondsPlayed,
			SecondsOff:    p.SecondsOff,
			Stints:        make([]stintView, 0, len(p.Stints)),
			Goals:         p.Goals,
			Assists:       p.Assists,
			Notes:         p.Notes,
		}
		for _, st := range p.Stints {
			view.Stints = append(view.Stints, stintView{On: st.Start, Off: st.End})
		}
		resp.Players = append(resp.Players, view)
	}
	return resp
}

type playerTotalsView struct {
	Name        string `json:"name"`
	Appearances int    `json:"appearances"`
	Seconds     int    `json:"seconds"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
}

type seasonSummaryResponse struct {
	TeamTitle      string             `json:"teamTitle"`
	Played         int                `json:"played"`
	Wins           int                `json:"wins"`
	Draws          int                `json:"draws"`
	Losses         int                `json:"losses"`
	GoalsFor       int                `json:"goalsFor"`
	GoalsAgainst   int                `json:"goalsAgainst"`
	GoalDifference int                `json:"goalDifference"`
	Players        []playerTotalsView `json:"players"`
}

func seasonSummaryView(teamTitle string, s match.SeasonSummary) seasonSummaryResponse {
	resp := seasonSummaryResponse{
		TeamTitle:      teamTitle,
		Played:         s.Played,
		Wins:           s.Wins,
		Draws:          s.Draws,
		Losses:         s.Losses,
		GoalsFor:       s.GoalsFor,
		GoalsAgainst:   s.GoalsAgainst,
		GoalDifference: s.GoalDifference,
		Players:        make([]playerTotalsView, 0, len(s.Players)),
	}
	for _, p := range s.Players {
		resp.Players = append(resp.Players, playerTotalsView(p))
	}
	return resp
}

type syncStatusResponse struct {
	Remote   bool       `json:"remote"`
	Online   bool       `json:"online"`
	Syncing  bool       `json:"syncing"`
	Pending  int        `json:"pending"`
	LastSync *time.Time `json:"lastSyncTime"`
}

func syncStatusView(s syncqueue.Status) syncStatusResponse {
	resp := syncStatusResponse{Remote: true, Online: s.Online, Syncing: s.Syncing, Pending: s.Pending}
	if !s.LastSync.IsZero() {
		last := s.LastSync
		resp.LastSync = &last
	}
	return resp
}

type drainResponse struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
	Skipped   string   `json:"skipped,omitempty"`
}

func drainView(r syncqueue.DrainResult) drainResponse {
	resp := drainResponse{
		Total:     r.Total,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Errors:    make([]string, 0, len(r.Errors)),
		Skipped:   string(r.Skipped),
	}
	for _, err := range r.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}
