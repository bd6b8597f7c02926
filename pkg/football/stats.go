package football

// TeamStats is a season aggregate for one team in one competition. Callers hold it as a
// pointer: nil means the provider had nothing (or failed), which is not the same as a team
// that has played zero matches.
type TeamStats struct {
	TeamID        int    `json:"teamId"`
	LeagueID      int    `json:"leagueId"`
	Season        int    `json:"season"`
	Played        int    `json:"played"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	GoalsFor      int    `json:"goalsFor"`
	GoalsAgainst  int    `json:"goalsAgainst"`
	CleanSheets   int    `json:"cleanSheets"`
	FailedToScore int    `json:"failedToScore"`
	Form          string `json:"form,omitempty"`
}

// WinRate returns wins per match as a percentage, nil when nothing has been played
func (s *TeamStats) WinRate() *float64 {
	if s == nil || s.Played == 0 {
		return nil
	}
	return FloatPtr(float64(s.Wins) / float64(s.Played) * 100)
}

// GoalsForPerGame returns average goals scored, nil when nothing has been played
func (s *TeamStats) GoalsForPerGame() *float64 {
	if s == nil || s.Played == 0 {
		return nil
	}
	return FloatPtr(float64(s.GoalsFor) / float64(s.Played))
}

// GoalsAgainstPerGame returns average goals conceded, nil when nothing has been played
func (s *TeamStats) GoalsAgainstPerGame() *float64 {
	if s == nil || s.Played == 0 {
		return nil
	}
	return FloatPtr(float64(s.GoalsAgainst) / float64(s.Played))
}

// MatchStats is the boxscore of one fixture
type MatchStats struct {
	FixtureID int              `json:"fixtureId"`
	Teams     []TeamMatchStats `json:"teams"`
}

// TeamMatchStats is one side's boxscore. Any field may be missing.
type TeamMatchStats struct {
	TeamID        int      `json:"teamId"`
	Corners       *int     `json:"corners,omitempty"`
	YellowCards   *int     `json:"yellowCards,omitempty"`
	RedCards      *int     `json:"redCards,omitempty"`
	Shots         *int     `json:"shots,omitempty"`
	ShotsOnTarget *int     `json:"shotsOnTarget,omitempty"`
	Possession    *float64 `json:"possession,omitempty"`
}

// Cards returns yellow plus red cards, nil when neither is known
func (t TeamMatchStats) Cards() *int {
	if t.YellowCards == nil && t.RedCards == nil {
		return nil
	}
	total := 0
	if t.YellowCards != nil {
		total += *t.YellowCards
	}
	if t.RedCards != nil {
		total += *t.RedCards
	}
	return &total
}

// For returns the boxscore of teamID
func (m MatchStats) For(teamID int) (TeamMatchStats, bool) {
	for _, t := range m.Teams {
		if t.TeamID == teamID {
			return t, true
		}
	}
	return TeamMatchStats{}, false
}

// Against returns the boxscore of whoever teamID played
func (m MatchStats) Against(teamID int) (TeamMatchStats, bool) {
	if len(m.Teams) != 2 {
		return TeamMatchStats{}, false
	}
	for _, t := range m.Teams {
		if t.TeamID != teamID {
			return t, true
		}
	}
	return TeamMatchStats{}, false
}
