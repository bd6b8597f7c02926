package football

// Odds is the pre-match odds payload for one fixture, keyed bookmaker -> market -> selection
type Odds struct {
	FixtureID  int         `json:"fixtureId"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one bookmaker's markets
type Bookmaker struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Markets []Market `json:"markets"`
}

// Market is a named bet type such as "Goals Over/Under"
type Market struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Values []OddValue `json:"values"`
}

// OddValue is one selection within a market, e.g. "Over 2.5" @ 1.85
type OddValue struct {
	Value string  `json:"value"`
	Odd   float64 `json:"odd"`
}

// Empty reports whether there is nothing to match against
func (o *Odds) Empty() bool {
	return o == nil || len(o.Bookmakers) == 0
}
