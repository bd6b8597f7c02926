package structural

import (
	"fmt"
	"math"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/catalog"
	"github.com/richard-senior/betscout/pkg/football/form"
)

const (
	// RecentWindow is how many recent matches feed opponent quality and result adjustment
	RecentWindow = 5
	// AdvantageThreshold is the FFS difference beyond which one side holds the advantage
	AdvantageThreshold = 50.0
	// LevelThreshold separates stronger, similar and weaker opponents
	LevelThreshold = 20.0
	// HighPrestige is the prestige bonus from which context bonuses apply
	HighPrestige = 20.0

	knockoutBonus = 20.0
	homeBonus     = 15.0
	friendlyMalus = -10.0
)

// TeamContext is one side of the fixture with its resolved domestic league and recent matches
// (most recent first)
type TeamContext struct {
	Team           football.Team
	League         football.League
	LeagueResolved bool
	Recent         []football.Fixture
}

// Input is everything the structural model reads
type Input struct {
	Fixture football.Fixture
	Home    TeamContext
	Away    TeamContext
}

// Analyzer computes Final Force Scores. The zero value uses the embedded catalogue.
type Analyzer struct {
	Catalog *catalog.Catalog
}

func (a Analyzer) catalog() *catalog.Catalog {
	if a.Catalog == nil {
		return catalog.Default()
	}
	return a.Catalog
}

// Analyze builds both breakdowns and compares them
func (a Analyzer) Analyze(in Input) football.StructuralAnalysis {
	home := a.Breakdown(in.Fixture, in.Home, true)
	away := a.Breakdown(in.Fixture, in.Away, false)
	cmp := Compare(home, away)
	cmp.Insights = a.insights(home, away, cmp)
	return football.StructuralAnalysis{Home: home, Away: away, Comparison: cmp}
}

// Breakdown computes one team's six components and its FFS
func (a Analyzer) Breakdown(fixture football.Fixture, tc TeamContext, isHome bool) football.StrengthBreakdown {
	cat := a.catalog()

	league := tc.League
	if league.Name == "" {
		league = fixture.League
	}
	tier := cat.Prestige(tc.Team.Name)

	b := football.StrengthBreakdown{
		TeamID:         tc.Team.ID,
		TeamName:       tc.Team.Name,
		League:         league.Name,
		LeagueResolved: tc.LeagueResolved,
		LeagueWeight:   cat.LeagueWeight(league.Name, league.Country),
		Prestige:       tier.Bonus,
		SquadStrength:  tier.Squad,
	}

	recent := form.Last(tc.Recent, RecentWindow)
	b.OpponentQuality = a.opponentQuality(recent, tc.Team.ID)
	b.ResultAdjustment = a.resultAdjustment(recent, tc.Team.ID, b.LeagueWeight+b.Prestige)
	b.ContextBonus = a.contextBonus(fixture.League, tier.Bonus, isHome)

	b.FFS = b.LeagueWeight + b.Prestige + b.SquadStrength + b.ContextBonus
	if b.OpponentQuality != nil {
		b.FFS += *b.OpponentQuality
	}
	if b.ResultAdjustment != nil {
		b.FFS += *b.ResultAdjustment
	}
	return b
}

// opponentLevel is the weight of the competition the match was played in plus the
// opponent's prestige. The competition stands in for the opponent's own tier.
func (a Analyzer) opponentLevel(m football.Fixture, teamID int) (weight, prestige float64) {
	cat := a.catalog()
	opp := m.Opponent(teamID)
	return cat.LeagueWeight(m.League.Name, m.League.Country), cat.Prestige(opp.Name).Bonus
}

func weightBucket(w float64) float64 {
	switch {
	case w >= 100:
		return 25
	case w >= 70:
		return 15
	case w >= 50:
		return 5
	default:
		return 0
	}
}

func (a Analyzer) opponentQuality(recent []football.Fixture, teamID int) *float64 {
	if len(recent) == 0 {
		return nil
	}
	total := 0.0
	for _, m := range recent {
		w, p := a.opponentLevel(m, teamID)
		total += weightBucket(w) + p/2
	}
	return football.FloatPtr(total / float64(len(recent)))
}

// result adjustment by opponent strength, indexed [stronger|similar|weaker][W|D|L]
var adjustments = map[string]map[football.Result]float64{
	"stronger": {football.Win: 25, football.Draw: 12, football.Loss: 0},
	"similar":  {football.Win: 0, football.Draw: -10, football.Loss: -10},
	"weaker":   {football.Win: 5, football.Draw: -15, football.Loss: -25},
}

func (a Analyzer) resultAdjustment(recent []football.Fixture, teamID int, ownLevel float64) *float64 {
	total, n := 0.0, 0
	for _, m := range recent {
		result, ok := m.ResultFor(teamID)
		if !ok {
			continue
		}
		w, p := a.opponentLevel(m, teamID)
		diff := (w + p) - ownLevel
		strength := "similar"
		if diff > LevelThreshold {
			strength = "stronger"
		} else if diff < -LevelThreshold {
			strength = "weaker"
		}
		total += adjustments[strength][result]
		n++
	}
	if n == 0 {
		return nil
	}
	return football.FloatPtr(total / float64(n))
}

func (a Analyzer) contextBonus(competition football.League, prestige float64, isHome bool) float64 {
	cat := a.catalog()
	bonus := 0.0
	if prestige >= HighPrestige && cat.IsKnockout(competition) {
		bonus += knockoutBonus
	}
	if prestige >= HighPrestige && isHome {
		bonus += homeBonus
	}
	if cat.IsFriendly(competition) {
		bonus += friendlyMalus
	}
	return bonus
}

// Compare derives the signed difference, the advantage verdict and the structural confidence.
// It depends only on the two FFS values, so swapping sides flips the verdict.
func Compare(home, away football.StrengthBreakdown) football.StructuralComparison {
	diff := home.FFS - away.FFS
	adv := football.AdvantageBalanced
	if diff > AdvantageThreshold {
		adv = football.AdvantageHome
	} else if diff < -AdvantageThreshold {
		adv = football.AdvantageAway
	}
	conf := math.Max(50, math.Min(95, 60+math.Abs(diff)*0.5))
	return football.StructuralComparison{Difference: diff, Advantage: adv, Confidence: conf}
}

func (a Analyzer) insights(home, away football.StrengthBreakdown, cmp football.StructuralComparison) []string {
	var out []string
	out = append(out, fmt.Sprintf("%s FFS %.0f (%s, weight %.0f) vs %s FFS %.0f (%s, weight %.0f)",
		home.TeamName, home.FFS, home.League, home.LeagueWeight,
		away.TeamName, away.FFS, away.League, away.LeagueWeight))

	if gap := home.LeagueWeight - away.LeagueWeight; math.Abs(gap) > LevelThreshold {
		stronger := home.TeamName
		if gap < 0 {
			stronger = away.TeamName
		}
		out = append(out, fmt.Sprintf("League tier gap of %.0f points in favour of %s", math.Abs(gap), stronger))
	}

	switch cmp.Advantage {
	case football.AdvantageHome:
		out = append(out, fmt.Sprintf("Structural advantage: %s by %.0f points", home.TeamName, cmp.Difference))
	case football.AdvantageAway:
		out = append(out, fmt.Sprintf("Structural advantage: %s by %.0f points", away.TeamName, -cmp.Difference))
	default:
		out = append(out, fmt.Sprintf("Structurally balanced (difference %.0f)", cmp.Difference))
	}

	for _, b := range []football.StrengthBreakdown{home, away} {
		if !b.LeagueResolved {
			out = append(out, fmt.Sprintf("Current league for %s unavailable, using %s", b.TeamName, b.League))
		}
		if b.OpponentQuality == nil {
			out = append(out, fmt.Sprintf("No recent matches for %s: opponent quality and results not rated", b.TeamName))
		}
	}
	return out
}
