package football

// Advantage is the categorical verdict of the structural comparison
type Advantage string

const (
	AdvantageHome     Advantage = "home"
	AdvantageAway     Advantage = "away"
	AdvantageBalanced Advantage = "balanced"
)

// StrengthBreakdown is one team's Final Force Score and its components. OpponentQuality and
// ResultAdjustment are nil when the team had no played recent matches; they contribute 0 to
// the FFS in that case.
type StrengthBreakdown struct {
	TeamID           int      `json:"teamId"`
	TeamName         string   `json:"teamName"`
	League           string   `json:"league"`
	LeagueResolved   bool     `json:"leagueResolved"`
	LeagueWeight     float64  `json:"leagueWeight"`
	Prestige         float64  `json:"prestige"`
	OpponentQuality  *float64 `json:"opponentQuality"`
	ResultAdjustment *float64 `json:"resultAdjustment"`
	SquadStrength    float64  `json:"squadStrength"`
	ContextBonus     float64  `json:"contextBonus"`
	FFS              float64  `json:"ffs"`
}

// StructuralComparison compares the two breakdowns
type StructuralComparison struct {
	Difference float64   `json:"difference"` // home FFS - away FFS
	Advantage  Advantage `json:"advantage"`
	Confidence float64   `json:"confidence"`
	Insights   []string  `json:"insights"`
}

// StructuralAnalysis is computed once per analysis and not modified afterwards
type StructuralAnalysis struct {
	Home       StrengthBreakdown    `json:"home"`
	Away       StrengthBreakdown    `json:"away"`
	Comparison StructuralComparison `json:"comparison"`
}
