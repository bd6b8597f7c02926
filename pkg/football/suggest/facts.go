package suggest

import (
	"math"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/risk"
)

// Input is everything the generator reads. Any of the pointer or slice inputs may be nil.
type Input struct {
	Fixture    football.Fixture
	Analysis   *football.GameAnalysis
	HomeForm   football.TeamForm
	AwayForm   football.TeamForm
	HomeRecent []football.Fixture
	AwayRecent []football.Fixture
	HomeStats  *football.TeamStats
	AwayStats  *football.TeamStats
	Odds       *football.Odds
	TopScorers []football.PlayerSeason
	HomeSquad  []football.PlayerSeason
	AwaySquad  []football.PlayerSeason
}

// facts are the numbers the rules are written against, derived once per generation
type facts struct {
	in *Input
	a  *football.GameAnalysis

	goals      float64
	btts       float64
	homeScore  float64
	awayScore  float64
	gap        float64
	favourite  side
	rivalry    bool
	corners    *float64
	cards      *float64
	firstHalf  *float64 // mean first-half goals across both sides' recent matches
	secondHalf *float64

	homeStrength float64
	awayStrength float64

	// set while a player rule is being evaluated
	player *football.PlayerSeason
}

type side int

const (
	neutral side = iota
	homeSide
	awaySide
)

func newFacts(in *Input, rivalry bool) *facts {
	a := in.Analysis
	f := &facts{
		in:        in,
		a:         a,
		goals:     a.TotalGoalsExpected,
		btts:      a.BothTeamsToScore,
		homeScore: a.HomeScore,
		awayScore: a.AwayScore,
		gap:       math.Abs(a.HomeScore - a.AwayScore),
		rivalry:   rivalry,
		corners:   a.ExpectedCorners,
		cards:     a.ExpectedCards,
	}
	switch {
	case a.HomeScore > a.AwayScore:
		f.favourite = homeSide
	case a.AwayScore > a.HomeScore:
		f.favourite = awaySide
	}
	f.firstHalf, f.secondHalf = halfGoalAverages(in.HomeRecent, in.AwayRecent)
	f.homeStrength = risk.TeamStrength(in.HomeForm, a.Confidence)
	f.awayStrength = risk.TeamStrength(in.AwayForm, a.Confidence)
	return f
}

// halfGoalAverages averages first and second half total goals over every recent match with a
// known half-time score
func halfGoalAverages(lists ...[]football.Fixture) (*float64, *float64) {
	first, second, n := 0, 0, 0
	for _, list := range lists {
		for _, m := range list {
			if !m.HasBeenPlayed() || !m.HalfTime.Known() {
				continue
			}
			ht := *m.HalfTime.Home + *m.HalfTime.Away
			ft := *m.Goals.Home + *m.Goals.Away
			first += ht
			second += ft - ht
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	return football.FloatPtr(float64(first) / float64(n)), football.FloatPtr(float64(second) / float64(n))
}

func (f *facts) form(s side) football.TeamForm {
	if s == awaySide {
		return f.in.AwayForm
	}
	return f.in.HomeForm
}

func (f *facts) team(s side) football.Team {
	if s == awaySide {
		return f.in.Fixture.Away
	}
	return f.in.Fixture.Home
}

func (f *facts) score(s side) float64 {
	if s == awaySide {
		return f.awayScore
	}
	return f.homeScore
}

func (f *facts) strength(s side) float64 {
	switch s {
	case homeSide:
		return f.homeStrength
	case awaySide:
		return f.awayStrength
	default:
		return (f.homeStrength + f.awayStrength) / 2
	}
}

func other(s side) side {
	if s == homeSide {
		return awaySide
	}
	return homeSide
}

// rate returns count/matches as a percentage, nil without matches
func rate(count, matches int) *float64 {
	if matches == 0 {
		return nil
	}
	return football.FloatPtr(float64(count) / float64(matches) * 100)
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
