package season

import (
	"encoding/json"
	"errors"
	"fmt"
)

var actionDecoders = map[ActionType]func(json.RawMessage) (Action, error){
	ActionSetTeamTitle:      decodeAction[SetTeamTitle],
	ActionAddSquadPlayer:    decodeAction[AddSquadPlayer],
	ActionRemoveSquadPlayer: decodeAction[RemoveSquadPlayer],
	ActionRenameSquadPlayer: decodeAction[RenameSquadPlayer],
	ActionReorderSquad:      decodeAction[ReorderSquad],
	ActionCreateMatch:       decodeAction[CreateMatch],
	ActionSelectMatch:       decodeAction[SelectMatch],
	ActionCloseMatch:        decodeAction[CloseMatch],
	ActionDeleteMatch:       decodeAction[DeleteMatch],
}

// ErrUnknownActionType is returned by ParseAction for unregistered types.
// ApplyToCurrent is built by callers from a parsed match action and is not
// registered here.
var ErrUnknownActionType = errors.New("unknown season action type")

// ParseAction decodes the JSON fields of a season action.
func ParseAction(t ActionType, raw json.RawMessage) (Action, error) {
	decode, ok := actionDecoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, t)
	}
	return decode(raw)
}

func decodeAction[T Action](raw json.RawMessage) (Action, error) {
	var action T
	if len(raw) == 0 {
		return action, nil
	}
	if err := json.Unmarshal(raw, &action); err != nil {
		return nil, fmt.Errorf("decode %s: %w", action.Type(), err)
	}
	return action, nil
}
