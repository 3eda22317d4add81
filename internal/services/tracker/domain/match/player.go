package match

import "fmt"

// Position is where a player lines up. Empty fields mean unset.
type Position struct {
	Role string
	Side string
}

// Player is one roster entry's timeline and counters within a match.
type Player struct {
	ID   int
	Name string
	// AccumulatedSeconds advances on clock ticks while the timer runs. It is a
	// cached reduction and is not recomputed from Events.
	AccumulatedSeconds int
	OnField            bool
	// TimerRunning implies OnField.
	TimerRunning bool
	Starting     bool
	Goals        int
	Assists      int
	Notes        string
	Position     Position
	// Events is the append-only on/off/position log.
	Events []Event
}

func (p Player) clone() Player {
	next := p
	if p.Events != nil {
		next.Events = make([]Event, len(p.Events))
		copy(next.Events, p.Events)
	}
	return next
}

func (p Player) validate() error {
	if p.AccumulatedSeconds < 0 || p.Goals < 0 || p.Assists < 0 {
		return fmt.Errorf("player %d: negative counter", p.ID)
	}
	if p.TimerRunning && !p.OnField {
		return fmt.Errorf("player %d: timer running while benched", p.ID)
	}
	for i, e := range p.Events {
		if !e.Kind.Valid() {
			return fmt.Errorf("player %d: event %d has unknown kind %q", p.ID, i, e.Kind)
		}
		if e.At < 0 {
			return fmt.Errorf("player %d: event %d at negative time", p.ID, i)
		}
	}
	return nil
}

// hasOpenStint reports whether the latest on/off boundary is an On.
func (p Player) hasOpenStint() (int, bool) {
	for i := len(p.Events) - 1; i >= 0; i-- {
		switch p.Events[i].Kind {
		case EventOn:
			return p.Events[i].At, true
		case EventOff:
			return 0, false
		}
	}
	return 0, false
}
