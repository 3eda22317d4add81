package season

import "github.com/louisbranch/pitchside/internal/services/tracker/domain/match"

// ActionType names a season action on the wire.
type ActionType string

const (
	ActionSetTeamTitle      ActionType = "season.set_team_title"
	ActionAddSquadPlayer    ActionType = "season.add_squad_player"
	ActionRemoveSquadPlayer ActionType = "season.remove_squad_player"
	ActionRenameSquadPlayer ActionType = "season.rename_squad_player"
	ActionReorderSquad      ActionType = "season.reorder_squad"
	ActionCreateMatch       ActionType = "season.create_match"
	ActionSelectMatch       ActionType = "season.select_match"
	ActionCloseMatch        ActionType = "season.close_match"
	ActionDeleteMatch       ActionType = "season.delete_match"
	ActionApplyToCurrent    ActionType = "season.apply_to_current"
)

// Action is a request to transition the season.
type Action interface {
	Type() ActionType
}

// SetTeamTitle sets the season's team name.
type SetTeamTitle struct {
	Title string `json:"title"`
}

// AddSquadPlayer appends a player to the squad.
type AddSquadPlayer struct {
	Name string `json:"name"`
}

// RemoveSquadPlayer drops a player from the squad.
type RemoveSquadPlayer struct {
	PlayerID int `json:"player_id"`
}

// RenameSquadPlayer changes a squad player's name.
type RenameSquadPlayer struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
}

// ReorderSquad moves the squad player at From to index To.
type ReorderSquad struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// CreateMatch builds a match from the current squad and selects it.
type CreateMatch struct {
	Opponent    string      `json:"opponent"`
	Venue       match.Venue `json:"venue"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	Tag         string      `json:"tag"`
}

// SelectMatch makes MatchID the current match.
type SelectMatch struct {
	MatchID int64 `json:"match_id"`
}

// CloseMatch clears the selection without touching the match.
type CloseMatch struct{}

// DeleteMatch removes a match and clears the selection if it was current.
type DeleteMatch struct {
	MatchID int64 `json:"match_id"`
}

// ApplyToCurrent routes a match action to the selected match.
type ApplyToCurrent struct {
	Action match.Action
}

func (SetTeamTitle) Type() ActionType      { return ActionSetTeamTitle }
func (AddSquadPlayer) Type() ActionType    { return ActionAddSquadPlayer }
func (RemoveSquadPlayer) Type() ActionType { return ActionRemoveSquadPlayer }
func (RenameSquadPlayer) Type() ActionType { return ActionRenameSquadPlayer }
func (ReorderSquad) Type() ActionType      { return ActionReorderSquad }
func (CreateMatch) Type() ActionType       { return ActionCreateMatch }
func (SelectMatch) Type() ActionType       { return ActionSelectMatch }
func (CloseMatch) Type() ActionType        { return ActionCloseMatch }
func (DeleteMatch) Type() ActionType       { return ActionDeleteMatch }
func (ApplyToCurrent) Type() ActionType    { return ActionApplyToCurrent }
