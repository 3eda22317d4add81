package snapshot

// Field names follow the browser client's saved payload so either side can
// read what the other wrote.

type envelope struct {
	Matches      []wireMatch `json:"matches"`
	Squad        []wireSquad `json:"squad"`
	NextPlayerID int         `json:"nextPlayerId"`
	TeamTitle    string      `json:"teamTitle"`
	CurrentMatch *wireMatch  `json:"currentMatch"`
}

type wireSquad struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type wireMatch struct {
	ID            int64        `json:"id"`
	Opponent      string       `json:"opponent"`
	Venue         string       `json:"venue"`
	Date          string       `json:"date"`
	Description   string       `json:"description"`
	Tag           string       `json:"tag"`
	Players       []wirePlayer `json:"players"`
	Status        string       `json:"status"`
	TeamGoals     int          `json:"teamGoals"`
	OpponentGoals int          `json:"opponentGoals"`
	MatchSeconds  int          `json:"matchSeconds"`
	MatchRunning  bool         `json:"matchRunning"`
}

type wirePlayer struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Seconds  int           `json:"seconds"`
	Running  bool          `json:"running"`
	Starting bool          `json:"starting"`
	OnField  bool          `json:"onField"`
	Goals    int           `json:"goals"`
	Assists  int           `json:"assists"`
	Notes    string        `json:"notes"`
	Position *wirePosition `json:"position,omitempty"`
	Events   []wireEvent   `json:"events"`
}

type wirePosition struct {
	Role string `json:"role"`
	Side string `json:"side"`
}

type wireEvent struct {
	Type string        `json:"type"`
	At   int           `json:"at"`
	From *wirePosition `json:"from,omitempty"`
	To   *wirePosition `json:"to,omitempty"`
}
