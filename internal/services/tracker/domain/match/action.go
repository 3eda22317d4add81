package match

// ActionType names an action on the wire and in logs.
type ActionType string

const (
	ActionStart                ActionType = "match.start"
	ActionTick                 ActionType = "match.tick"
	ActionToggleClock          ActionType = "match.toggle_clock"
	ActionTogglePlayerTimer    ActionType = "match.toggle_player_timer"
	ActionSubOff               ActionType = "match.sub_off"
	ActionSubOn                ActionType = "match.sub_on"
	ActionUpdateStat           ActionType = "match.update_stat"
	ActionUpdateScore          ActionType = "match.update_score"
	ActionUpdatePlayerPosition ActionType = "match.update_player_position"
	ActionEnd                  ActionType = "match.end"
	ActionAddPlayer            ActionType = "match.add_player"
	ActionRemovePlayer         ActionType = "match.remove_player"
	ActionBulkEditPlayerStats  ActionType = "match.bulk_edit_player_stats"
	ActionUpdateMeta           ActionType = "match.update_meta"
	ActionSetDuration          ActionType = "match.set_duration"
	ActionRenamePlayer         ActionType = "match.rename_player"
	ActionUpdatePlayerNotes    ActionType = "match.update_player_notes"
	ActionToggleStarting       ActionType = "match.toggle_starting"
)

// Action is a request to transition a match.
type Action interface {
	Type() ActionType
}

// Stat is a per-player counter adjustable by UpdateStat.
type Stat string

const (
	StatGoals   Stat = "goals"
	StatAssists Stat = "assists"
)

// ScoreField is a scoreboard counter adjustable by UpdateScore.
type ScoreField string

const (
	ScoreTeamGoals     ScoreField = "teamGoals"
	ScoreOpponentGoals ScoreField = "opponentGoals"
)

// Start moves a match from Setup to Live and puts the starters on.
type Start struct{}

// Tick advances the match clock by one second.
type Tick struct{}

// ToggleClock pauses or resumes a live match.
type ToggleClock struct{}

// TogglePlayerTimer flips a player's timer, recording an on or off event.
type TogglePlayerTimer struct {
	PlayerID int `json:"player_id"`
}

// SubOff benches a player.
type SubOff struct {
	PlayerID int `json:"player_id"`
}

// SubOn puts a player on the field.
type SubOn struct {
	PlayerID int `json:"player_id"`
}

// UpdateStat adjusts a player's goals or assists by +1 or -1.
type UpdateStat struct {
	PlayerID int  `json:"player_id"`
	Stat     Stat `json:"stat"`
	Delta    int  `json:"delta"`
}

// UpdateScore adjusts a scoreboard counter independently of player stats.
type UpdateScore struct {
	Field ScoreField `json:"field"`
	Delta int        `json:"delta"`
}

// UpdatePlayerPosition sets a player's role and side.
type UpdatePlayerPosition struct {
	PlayerID int    `json:"player_id"`
	Role     string `json:"role"`
	Side     string `json:"side"`
}

// End completes a live match and closes every open stint.
type End struct{}

// AddPlayer appends a new player to the match roster.
type AddPlayer struct {
	Name string `json:"name"`
}

// RemovePlayer drops a player from the match roster.
type RemovePlayer struct {
	PlayerID int `json:"player_id"`
}

// BulkEditPlayerStats overwrites a player's counters, typically after the
// final whistle.
type BulkEditPlayerStats struct {
	PlayerID int    `json:"player_id"`
	Seconds  int    `json:"seconds"`
	Goals    int    `json:"goals"`
	Assists  int    `json:"assists"`
	Notes    string `json:"notes"`
}

// UpdateMeta changes descriptive fields; nil fields are left alone.
type UpdateMeta struct {
	Opponent    *string `json:"opponent,omitempty"`
	Venue       *Venue  `json:"venue,omitempty"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Tag         *string `json:"tag,omitempty"`
}

// SetDuration corrects the match clock.
type SetDuration struct {
	Seconds int `json:"seconds"`
}

// RenamePlayer changes a player's display name for this match.
type RenamePlayer struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
}

// UpdatePlayerNotes replaces a player's free-text notes.
type UpdatePlayerNotes struct {
	PlayerID int    `json:"player_id"`
	Notes    string `json:"notes"`
}

// ToggleStarting flips whether a player starts; only valid during Setup.
type ToggleStarting struct {
	PlayerID int `json:"player_id"`
}

func (Start) Type() ActionType                { return ActionStart }
func (Tick) Type() ActionType                 { return ActionTick }
func (ToggleClock) Type() ActionType          { return ActionToggleClock }
func (TogglePlayerTimer) Type() ActionType    { return ActionTogglePlayerTimer }
func (SubOff) Type() ActionType               { return ActionSubOff }
func (SubOn) Type() ActionType                { return ActionSubOn }
func (UpdateStat) Type() ActionType           { return ActionUpdateStat }
func (UpdateScore) Type() ActionType          { return ActionUpdateScore }
func (UpdatePlayerPosition) Type() ActionType { return ActionUpdatePlayerPosition }
func (End) Type() ActionType                  { return ActionEnd }
func (AddPlayer) Type() ActionType            { return ActionAddPlayer }
func (RemovePlayer) Type() ActionType         { return ActionRemovePlayer }
func (BulkEditPlayerStats) Type() ActionType  { return ActionBulkEditPlayerStats }
func (UpdateMeta) Type() ActionType           { return ActionUpdateMeta }
func (SetDuration) Type() ActionType          { return ActionSetDuration }
func (RenamePlayer) Type() ActionType         { return ActionRenamePlayer }
func (UpdatePlayerNotes) Type() ActionType    { return ActionUpdatePlayerNotes }
func (ToggleStarting) Type() ActionType       { return ActionToggleStarting }
