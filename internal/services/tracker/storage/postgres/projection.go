package postgres

import "github.com/louisbranch/pitchside/internal/services/tracker/domain/season"

type matchRow struct {
	StateKey      string
	MatchID       int64
	Opponent      string
	Venue         string
	Date          string
	Tag           string
	Description   string
	Status        string
	TeamGoals     int
	OpponentGoals int
	Seconds       int
}

type playerRow struct {
	StateKey string
	MatchID  int64
	PlayerID int
	Name     string
	Starting bool
	Seconds  int
	Goals    int
	Assists  int
	Notes    string
	// Role and Side are NULL when the player has no position.
	Role *string
	Side *string
}

func project(key string, state season.State) ([]matchRow, []playerRow) {
	matches := make([]matchRow, 0, len(state.Matches))
	var players []playerRow
	for _, m := range state.Matches {
		matches = append(matches, matchRow{
			StateKey:      key,
			MatchID:       m.ID,
			Opponent:      m.Opponent,
			Venue:         string(m.Venue),
			Date:          m.Date,
			Tag:           m.Tag,
			Description:   m.Description,
			Status:        string(m.Status),
			TeamGoals:     m.TeamGoals,
			OpponentGoals: m.OpponentGoals,
			Seconds:       m.ElapsedSeconds,
		})
		for _, p := range m.Players {
			players = append(players, playerRow{
				StateKey: key,
				MatchID:  m.ID,
				PlayerID: p.ID,
				Name:     p.Name,
				Starting: p.Starting,
				Seconds:  p.AccumulatedSeconds,
				Goals:    p.Goals,
				Assists:  p.Assists,
				Notes:    p.Notes,
				Role:     nullable(p.Position.Role),
				Side:     nullable(p.Position.Side),
			})
		}
	}
	return matches, players
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
