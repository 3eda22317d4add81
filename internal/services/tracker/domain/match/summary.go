package match

import (
	"sort"
	"strings"
)

// Result is the outcome of a match from the team's point of view.
type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

// Result compares the scoreboard.
func (m Match) Result() Result {
	switch {
	case m.TeamGoals > m.OpponentGoals:
		return ResultWin
	case m.TeamGoals < m.OpponentGoals:
		return ResultLoss
	default:
		return ResultDraw
	}
}

// PlayerSummary is a derived per-player view of one match.
type PlayerSummary struct {
	PlayerID      int
	Name          string
	Starting      bool
	Position      Position
	SecondsPlayed int
	SecondsOff    int
	Stints        []Stint
	Goals         int
	Assists       int
	Notes         string
}

// Summary is a derived view of one match, players ordered by time played.
type Summary struct {
	ID             int64
	Meta           Meta
	Status         Status
	Result         Result
	TeamGoals      int
	OpponentGoals  int
	ElapsedSeconds int
	Players        []PlayerSummary
}

// Summarize derives a Summary; it reads m without modifying it.
func Summarize(m Match) Summary {
	summary := Summary{
		ID:             m.ID,
		Meta:           m.Meta,
		Status:         m.Status,
		Result:         m.Result(),
		TeamGoals:      m.TeamGoals,
		OpponentGoals:  m.OpponentGoals,
		ElapsedSeconds: m.ElapsedSeconds,
		Players:        make([]PlayerSummary, 0, len(m.Players)),
	}
	for _, p := range m.Players {
		summary.Players = append(summary.Players, PlayerSummary{
			PlayerID:      p.ID,
			Name:          p.Name,
			Starting:      p.Starting,
			Position:      p.Position,
			SecondsPlayed: p.AccumulatedSeconds,
			SecondsOff:    floor(m.ElapsedSeconds - p.AccumulatedSeconds),
			Stints:        DeriveStints(p.Events, m.ElapsedSeconds),
			Goals:         p.Goals,
			Assists:       p.Assists,
			Notes:         p.Notes,
		})
	}
	sort.SliceStable(summary.Players, func(i, j int) bool {
		return summary.Players[i].SecondsPlayed > summary.Players[j].SecondsPlayed
	})
	return summary
}

// PlayerTotals aggregates one player across completed matches. Players are
// matched by name because roster ids are only unique within a match.
type PlayerTotals struct {
	Name        string
	Appearances int
	Seconds     int
	Goals       int
	Assists     int
}

// SeasonSummary aggregates completed matches.
type SeasonSummary struct {
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Players        []PlayerTotals
}

// SummarizeSeason aggregates the completed matches in matches.
func SummarizeSeason(matches []Match) SeasonSummary {
	var summary SeasonSummary
	totals := make(map[string]*PlayerTotals)
	for _, m := range matches {
		if m.Status != StatusCompleted {
			continue
		}
		summary.Played++
		switch m.Result() {
		case ResultWin:
			summary.Wins++
		case ResultDraw:
			summary.Draws++
		case ResultLoss:
			summary.Losses++
		}
		summary.GoalsFor += m.TeamGoals
		summary.GoalsAgainst += m.OpponentGoals
		for _, p := range m.Players {
			name := strings.TrimSpace(p.Name)
			t, ok := totals[name]
			if !ok {
				t = &PlayerTotals{Name: name}
				totals[name] = t
			}
			if p.AccumulatedSeconds > 0 {
				t.Appearances++
			}
			t.Seconds += p.AccumulatedSeconds
			t.Goals += p.Goals
			t.Assists += p.Assists
		}
	}
	summary.GoalDifference = summary.GoalsFor - summary.GoalsAgainst

	summary.Players = make([]PlayerTotals, 0, len(totals))
	for _, t := range totals {
		summary.Players = append(summary.Players, *t)
	}
	sort.Slice(summary.Players, func(i, j int) bool {
		if summary.Players[i].Seconds != summary.Players[j].Seconds {
			return summary.Players[i].Seconds > summary.Players[j].Seconds
		}
		return summary.Players[i].Name < summary.Players[j].Name
	})
	return summary
}
