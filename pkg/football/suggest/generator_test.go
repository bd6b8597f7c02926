package suggest

import (
	"testing"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	homeTeam = football.Team{ID: 1, Name: "Harbour City"}
	awayTeam = football.Team{ID: 2, Name: "Valley Rovers"}
)

func ids(list []football.BetSuggestion) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, s.ID)
	}
	return out
}

func byID(list []football.BetSuggestion, id string) (football.BetSuggestion, bool) {
	for _, s := range list {
		if s.ID == id {
			return s, true
		}
	}
	return football.BetSuggestion{}, false
}

func assertRanked(t *testing.T, list []football.BetSuggestion) {
	t.Helper()
	for i, s := range list {
		if s.RealOdd != nil {
			assert.GreaterOrEqual(t, *s.RealOdd, risk.MinOdd, s.ID)
		} else {
			assert.GreaterOrEqual(t, s.Confidence, MinConfidenceWithoutOdd, s.ID)
		}
		if i == 0 {
			continue
		}
		prev := list[i-1]
		require.LessOrEqual(t, prev.Risk, s.Risk, "risk order at %d", i)
		if prev.Risk == s.Risk {
			require.GreaterOrEqual(t, prev.Confidence, s.Confidence, "confidence order at %d", i)
		}
	}
}

// a strong home side against a leaky away side in a high scoring fixture
func dominantHome() Input {
	return Input{
		Fixture: football.Fixture{ID: 100, Home: homeTeam, Away: awayTeam},
		Analysis: &football.GameAnalysis{
			FixtureID:          100,
			HomeTeam:           homeTeam.Name,
			AwayTeam:           awayTeam.Name,
			HomeScore:          70,
			AwayScore:          30,
			TotalGoalsExpected: 3.2,
			BothTeamsToScore:   62,
			Confidence:         70,
			ExpectedCorners:    football.FloatPtr(11.5),
			ExpectedCards:      football.FloatPtr(5),
		},
		HomeForm: football.TeamForm{
			TeamID: 1, Matches: 10, Wins: 7, Draws: 2, Losses: 1, CleanSheets: 5, BothScored: 5,
			WinRate: football.FloatPtr(70), AvgGoalsFor: football.FloatPtr(2.2), AvgGoalsAgainst: football.FloatPtr(0.8),
		},
		AwayForm: football.TeamForm{
			TeamID: 2, Matches: 10, Wins: 2, Draws: 2, Losses: 6, FailedToScore: 4, BothScored: 5,
			WinRate: football.FloatPtr(20), AvgGoalsFor: football.FloatPtr(0.9), AvgGoalsAgainst: football.FloatPtr(1.8),
		},
	}
}

func TestGenerateDominantHome(t *testing.T) {
	out := Generator{}.Generate(dominantHome())
	got := ids(out)

	for _, id := range []string{
		"goals-over-1.5", "btts-yes", "home-win", "home-double-chance", "corners-over-9.5",
		"cards-over-3.5", "home-handicap-1.5", "home-goals-over-1.5", "home-win-and-over-1.5",
		"home-win-to-nil",
	} {
		assert.Contains(t, got, id)
	}
	for _, id := range []string{"away-win", "draw", "btts-no", "goals-under-2.5", "goals-under-3.5", "away-double-chance"} {
		assert.NotContains(t, got, id)
	}
	// unpriced and below 50: filtered
	assert.NotContains(t, got, "btts-and-over-2.5")
	assert.NotContains(t, got, "goals-over-2.5")

	hc, ok := byID(out, "home-handicap-1.5")
	require.True(t, ok)
	require.NotNil(t, hc.Handicap)
	assert.Equal(t, -1.5, *hc.Handicap)
	assert.Equal(t, football.CategoryHandicap, hc.Category)

	win, _ := byID(out, "home-win")
	assert.Contains(t, win.Reasoning, "Harbour City")
	assert.Nil(t, win.RealOdd)
	assertRanked(t, out)
}

func TestGenerateAttachesAndFiltersOdds(t *testing.T) {
	in := dominantHome()
	in.Odds = &football.Odds{FixtureID: 100, Bookmakers: []football.Bookmaker{{
		Name: "Bet365",
		Markets: []football.Market{
			{Name: "Match Winner", Values: []football.OddValue{{Value: "Home", Odd: 1.2}, {Value: "Draw", Odd: 6}, {Value: "Away", Odd: 11}}},
			{Name: "Goals Over/Under", Values: []football.OddValue{{Value: "Over 1.5", Odd: 1.45}, {Value: "Over 2.5", Odd: 2.1}}},
		},
	}}}

	out := Generator{}.Generate(in)
	got := ids(out)

	assert.NotContains(t, got, "home-win", "odd 1.20 is below the minimum")

	over15, ok := byID(out, "goals-over-1.5")
	require.True(t, ok)
	require.NotNil(t, over15.RealOdd)
	assert.Equal(t, 1.45, *over15.RealOdd)
	assert.Equal(t, "Bet365", over15.Bookmaker)
	assert.Equal(t, football.RiskMedium, over15.Risk)

	// priced, so kept despite low confidence
	over25, ok := byID(out, "goals-over-2.5")
	require.True(t, ok)
	assert.Equal(t, football.RiskVeryHigh, over25.Risk)
	assertRanked(t, out)
}

func TestGeneratePlayerMarkets(t *testing.T) {
	in := dominantHome()
	in.TopScorers = []football.PlayerSeason{
		{PlayerID: 9, Name: "A. Striker", TeamID: 1, Rank: 2, Appearances: 12, Goals: 10},
		{PlayerID: 77, Name: "Elsewhere", TeamID: 55, Rank: 1, Appearances: 12, Goals: 14},
	}
	in.AwaySquad = []football.PlayerSeason{
		{PlayerID: 4, Name: "B. Hardman", TeamID: 2, Appearances: 10, YellowCards: 6},
		{PlayerID: 5, Name: "C. Calm", TeamID: 2, Appearances: 10, YellowCards: 1},
	}
	in.Odds = &football.Odds{Bookmakers: []football.Bookmaker{{
		Name: "Bet365",
		Markets: []football.Market{
			{Name: "Anytime Goal Scorer", Values: []football.OddValue{{Value: "Someone Else", Odd: 3.0}}},
		},
	}}}

	out := Generator{}.Generate(in)
	got := ids(out)

	scorer, ok := byID(out, "anytime-scorer-9")
	require.True(t, ok)
	assert.Equal(t, "A. Striker", scorer.Player)
	assert.Equal(t, football.CategoryPlayer, scorer.Category)
	assert.Equal(t, 75.0, scorer.Confidence)
	assert.Nil(t, scorer.RealOdd, "another player's price must not be attached")
	assert.Contains(t, scorer.Reasoning, "ranked 2")

	assert.NotContains(t, got, "anytime-scorer-77")
	assert.Contains(t, got, "player-booked-4")
	assert.NotContains(t, got, "player-booked-5")
}

func TestGenerateStrictDraw(t *testing.T) {
	in := Input{
		Fixture: football.Fixture{ID: 5, Home: homeTeam, Away: awayTeam},
		Analysis: &football.GameAnalysis{
			HomeScore: 48, AwayScore: 46, TotalGoalsExpected: 2.4, BothTeamsToScore: 50, Confidence: 60,
		},
		HomeForm: football.TeamForm{Matches: 10, WinRate: football.FloatPtr(40), AvgGoalsFor: football.FloatPtr(1.3), AvgGoalsAgainst: football.FloatPtr(1.2)},
		AwayForm: football.TeamForm{Matches: 10, WinRate: football.FloatPtr(35), AvgGoalsFor: football.FloatPtr(1.1), AvgGoalsAgainst: football.FloatPtr(1.1)},
	}
	out := Generator{}.Generate(in)
	draw, ok := byID(out, "draw")
	require.True(t, ok)
	assert.InDelta(t, 57.3, draw.Confidence, 0.05)
	assert.Len(t, draw.Criteria, 3)
	assert.NotContains(t, ids(out), "home-win")

	// a wider form gap breaks the strict draw rule
	in.AwayForm.WinRate = football.FloatPtr(20)
	assert.NotContains(t, ids(Generator{}.Generate(in)), "draw")

	// no form data at all: never a draw call
	in.HomeForm, in.AwayForm = football.TeamForm{}, football.TeamForm{}
	assert.NotContains(t, ids(Generator{}.Generate(in)), "draw")
}

func TestGenerateHalfMarketsFromRecentMatches(t *testing.T) {
	late := func(ht, ft int) football.Fixture {
		return football.Fixture{
			Home: homeTeam, Away: football.Team{ID: 99},
			Goals:    football.Score{Home: football.IntPtr(ft), Away: football.IntPtr(0)},
			HalfTime: football.Score{Home: football.IntPtr(ht), Away: football.IntPtr(0)},
		}
	}
	in := dominantHome()
	in.HomeRecent = []football.Fixture{late(0, 2), late(1, 3), late(0, 2)}

	out := Generator{}.Generate(in)
	sh, ok := byID(out, "second-half-highest")
	require.True(t, ok)
	assert.Equal(t, football.CategorySecondHalf, sh.Category)
	assert.Equal(t, 72.0, sh.Confidence)
	assert.NotContains(t, ids(out), "first-half-over-0.5")
}

func TestGenerateWithoutAnalysis(t *testing.T) {
	assert.Nil(t, Generator{}.Generate(Input{}))
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generator{}.Generate(dominantHome())
	b := Generator{}.Generate(dominantHome())
	assert.Equal(t, ids(a), ids(b))
}

func TestRank(t *testing.T) {
	in := []football.BetSuggestion{
		{ID: "a", Risk: football.RiskHigh, Confidence: 60},
		{ID: "b", Risk: football.RiskLow, Confidence: 55},
		{ID: "c", Risk: football.RiskLow, Confidence: 80},
		{ID: "d", Risk: football.RiskLow, Confidence: 90, RealOdd: football.FloatPtr(1.25)},
		{ID: "e", Risk: football.RiskMedium, Confidence: 40},
		{ID: "f", Risk: football.RiskVeryHigh, Confidence: 30, RealOdd: football.FloatPtr(2.5)},
	}
	out := Rank(in)
	assert.Equal(t, []string{"c", "b", "a", "f"}, ids(out))
	assertRanked(t, out)
}

func TestPoissonTails(t *testing.T) {
	assert.InDelta(t, 0.4562, OverLine(2.5, 2.5), 0.0005)
	assert.InDelta(t, 1-0.4562, UnderLine(2.5, 2.5), 0.0005)
	assert.InDelta(t, 1.0, AtMost(3, 30), 1e-9)
	assert.Equal(t, 0.0, OverLine(0, 0.5))
}
