package match

// EventKind classifies a timeline event.
type EventKind string

const (
	EventOn       EventKind = "on"
	EventOff      EventKind = "off"
	EventPosition EventKind = "position"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventOn, EventOff, EventPosition:
		return true
	default:
		return false
	}
}

// Event is one entry in a player's timeline. At is match-clock seconds. From
// and To are only set on position events.
type Event struct {
	Kind EventKind
	At   int
	From *Position
	To   *Position
}
