package football

// PlayerSeason is a player's season line for one team. Used both for league top-scorer
// rankings (Rank > 0) and for squad lists.
type PlayerSeason struct {
	PlayerID    int    `json:"playerId"`
	Name        string `json:"name"`
	TeamID      int    `json:"teamId"`
	TeamName    string `json:"teamName,omitempty"`
	Position    string `json:"position,omitempty"`
	Rank        int    `json:"rank,omitempty"`
	Appearances int    `json:"appearances"`
	Minutes     int    `json:"minutes"`
	Goals       int    `json:"goals"`
	Assists     int    `json:"assists"`
	YellowCards int    `json:"yellowCards"`
	RedCards    int    `json:"redCards"`
}

// GoalsPerAppearance is nil when the player has not appeared
func (p PlayerSeason) GoalsPerAppearance() *float64 {
	if p.Appearances == 0 {
		return nil
	}
	return FloatPtr(float64(p.Goals) / float64(p.Appearances))
}

// CardsPerAppearance is nil when the player has not appeared
func (p PlayerSeason) CardsPerAppearance() *float64 {
	if p.Appearances == 0 {
		return nil
	}
	return FloatPtr(float64(p.YellowCards+p.RedCards) / float64(p.Appearances))
}
