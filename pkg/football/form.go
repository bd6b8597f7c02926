package football

// TeamForm aggregates a team's recent results. The rate and average fields are nil when no
// played match was available, so "no data" never reads as "scored nothing".
type TeamForm struct {
	TeamID          int      `json:"teamId"`
	Matches         int      `json:"matches"`
	Wins            int      `json:"wins"`
	Draws           int      `json:"draws"`
	Losses          int      `json:"losses"`
	GoalsFor        int      `json:"goalsFor"`
	GoalsAgainst    int      `json:"goalsAgainst"`
	CleanSheets     int      `json:"cleanSheets"`
	FailedToScore   int      `json:"failedToScore"`
	BothScored      int      `json:"bothScored"`
	WinRate         *float64 `json:"winRate"`
	AvgGoalsFor     *float64 `json:"avgGoalsFor"`
	AvgGoalsAgainst *float64 `json:"avgGoalsAgainst"`
	Sequence        string   `json:"sequence"` // most recent first, e.g. "WWDLW"
}

// HasData reports whether at least one played match was considered
func (f TeamForm) HasData() bool {
	return f.Matches > 0
}

// BothScoredRate is the share of matches where both sides scored, as a percentage
func (f TeamForm) BothScoredRate() *float64 {
	if f.Matches == 0 {
		return nil
	}
	return FloatPtr(float64(f.BothScored) / float64(f.Matches) * 100)
}

// AvgTotalGoals is the mean goals per match in the team's games
func (f TeamForm) AvgTotalGoals() *float64 {
	if f.Matches == 0 {
		return nil
	}
	return FloatPtr(float64(f.GoalsFor+f.GoalsAgainst) / float64(f.Matches))
}

// Unbeaten reports a run with no defeats across the considered matches
func (f TeamForm) Unbeaten() bool {
	return f.Matches > 0 && f.Losses == 0
}
