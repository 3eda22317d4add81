package match

import (
	"encoding/json"
	"errors"
	"fmt"
)

// actionDecoders holds the client-issued actions. Tick is produced only by
// the session clock and is not decodable.
var actionDecoders = map[ActionType]func(json.RawMessage) (Action, error){
	ActionStart:                decodeAction[Start],
	ActionToggleClock:          decodeAction[ToggleClock],
	ActionTogglePlayerTimer:    decodeAction[TogglePlayerTimer],
	ActionSubOff:               decodeAction[SubOff],
	ActionSubOn:                decodeAction[SubOn],
	ActionUpdateStat:           decodeAction[UpdateStat],
	ActionUpdateScore:          decodeAction[UpdateScore],
	ActionUpdatePlayerPosition: decodeAction[UpdatePlayerPosition],
	ActionEnd:                  decodeAction[End],
	ActionAddPlayer:            decodeAction[AddPlayer],
	ActionRemovePlayer:         decodeAction[RemovePlayer],
	ActionBulkEditPlayerStats:  decodeAction[BulkEditPlayerStats],
	ActionUpdateMeta:           decodeAction[UpdateMeta],
	ActionSetDuration:          decodeAction[SetDuration],
	ActionRenamePlayer:         decodeAction[RenamePlayer],
	ActionUpdatePlayerNotes:    decodeAction[UpdatePlayerNotes],
	ActionToggleStarting:       decodeAction[ToggleStarting],
}

// ErrUnknownActionType is returned by ParseAction for unregistered types.
var ErrUnknownActionType = errors.New("unknown match action type")

// ParseAction decodes the JSON fields of an action of the given type.
func ParseAction(t ActionType, raw json.RawMessage) (Action, error) {
	decode, ok := actionDecoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownActionType, t)
	}
	return decode(raw)
}

// ActionTypes lists every registered action type.
func ActionTypes() []ActionType {
	types := make([]ActionType, 0, len(actionDecoders))
	for t := range actionDecoders {
		types = append(types, t)
	}
	return types
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
