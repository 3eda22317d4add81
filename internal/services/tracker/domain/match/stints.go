package match

// Stint is one continuous on-field interval in match-clock seconds.
type Stint struct {
	Start int
	End   int
}

// Seconds returns the stint length, never negative.
func (s Stint) Seconds() int {
	return floor(s.End - s.Start)
}

// StintReport is the full result of scanning a timeline.
type StintReport struct {
	Stints []Stint
	// DroppedOpens lists On times superseded by a later On with no Off in
	// between. Those intervals do not appear in Stints.
	DroppedOpens []int
}

// DeriveStints pairs On/Off events into stints. A trailing On is closed at
// elapsed. The events slice is only read.
func DeriveStints(events []Event, elapsed int) []Stint {
	return AnalyzeStints(events, elapsed).Stints
}

// AnalyzeStints is DeriveStints plus the On times it discarded.
func AnalyzeStints(events []Event, elapsed int) StintReport {
	var report StintReport
	open, hasOpen := 0, false
	for _, e := range events {
		switch e.Kind {
		case EventOn:
			if hasOpen {
				report.DroppedOpens = append(report.DroppedOpens, open)
			}
			open, hasOpen = e.At, true
		case EventOff:
			if hasOpen {
				report.Stints = append(report.Stints, Stint{Start: open, End: e.At})
				hasOpen = false
			}
		}
	}
	if hasOpen {
		report.Stints = append(report.Stints, Stint{Start: open, End: elapsed})
	}
	return report
}

// TotalSeconds sums the length of every stint.
func TotalSeconds(stints []Stint) int {
	total := 0
	for _, s := range stints {
		total += s.Seconds()
	}
	return total
}

// Stints derives the player's stints against the match clock.
func (m Match) Stints(playerID int) ([]Stint, bool) {
	p, ok := m.Player(playerID)
	if !ok {
		return nil, false
	}
	return DeriveStints(p.Events, m.ElapsedSeconds), true
}
