package football

import "time"

// Split is a home/away pair of percentages
type Split struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Insights groups the narrative lines produced by the analysis
type Insights struct {
	Main       []string `json:"main"`
	Form       []string `json:"form"`
	HeadToHead []string `json:"headToHead"`
	Goals      []string `json:"goals"`
	Discipline []string `json:"discipline"`
	Context    []string `json:"context"`
	Structural []string `json:"structural"`
}

// RiskFactors buckets the caveats by severity
type RiskFactors struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

// KeyPredictions are the three headline calls
type KeyPredictions struct {
	MostLikely     string `json:"mostLikely"`
	SurpriseFactor string `json:"surpriseFactor"`
	SafetyBet      string `json:"safetyBet"`
}

// GameAnalysis is the primary output of the analysis engine.
// HomeScore and AwayScore are independently blended percentages and are not expected to sum
// to 100.
type GameAnalysis struct {
	FixtureID          int                 `json:"fixtureId"`
	HomeTeam           string              `json:"homeTeam"`
	AwayTeam           string              `json:"awayTeam"`
	HomeScore          float64             `json:"homeScore"`
	AwayScore          float64             `json:"awayScore"`
	Traditional        Split               `json:"traditional"`
	StructuralSplit    Split               `json:"structuralSplit"`
	TotalGoalsExpected float64             `json:"totalGoalsExpected"`
	BothTeamsToScore   float64             `json:"bothTeamsToScore"`
	Confidence         float64             `json:"confidence"`
	ExpectedCorners    *float64            `json:"expectedCorners,omitempty"`
	ExpectedCards      *float64            `json:"expectedCards,omitempty"`
	Insights           Insights            `json:"insights"`
	RiskFactors        RiskFactors         `json:"riskFactors"`
	KeyPredictions     KeyPredictions      `json:"keyPredictions"`
	Structural         *StructuralAnalysis `json:"structural,omitempty"`
	BetSuggestions     []BetSuggestion     `json:"betSuggestions,omitempty"`
	Fallback           bool                `json:"fallback"`
	GeneratedAt        time.Time           `json:"generatedAt"`
}

// AttachSuggestions appends a generated batch. It is the only mutation an analysis accepts.
func (g *GameAnalysis) AttachSuggestions(s []BetSuggestion) {
	g.BetSuggestions = append(g.BetSuggestions, s...)
}

// Favourite returns the name of the side with the higher blended score and the gap
func (g *GameAnalysis) Favourite() (string, float64) {
	if g.HomeScore >= g.AwayScore {
		return g.HomeTeam, g.HomeScore - g.AwayScore
	}
	return g.AwayTeam, g.AwayScore - g.HomeScore
}
