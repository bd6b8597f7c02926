package risk

import (
	"testing"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOdd(t *testing.T) {
	cases := map[float64]football.RiskLevel{
		1.20: football.RiskLow,
		1.34: football.RiskLow,
		1.35: football.RiskMedium,
		1.42: football.RiskMedium,
		1.50: football.RiskMedium,
		1.52: football.RiskHigh,
		1.70: football.RiskHigh,
		1.71: football.RiskVeryHigh,
		3.40: football.RiskVeryHigh,
	}
	for odd, want := range cases {
		assert.Equal(t, want, FromOdd(odd), "odd %.2f", odd)
	}
}

func TestFromComposite(t *testing.T) {
	assert.Equal(t, football.RiskLow, FromComposite(85, 75))
	assert.Equal(t, football.RiskMedium, FromComposite(70, 50))
	assert.Equal(t, football.RiskHigh, FromComposite(50, 30))
	assert.Equal(t, football.RiskVeryHigh, FromComposite(40, 20))
}

func TestTeamStrength(t *testing.T) {
	assert.Equal(t, 60.0, TeamStrength(football.TeamForm{}, 60))

	f := football.TeamForm{
		Matches:         10,
		WinRate:         football.FloatPtr(70),
		AvgGoalsFor:     football.FloatPtr(2.0),
		AvgGoalsAgainst: football.FloatPtr(1.0),
	}
	assert.InDelta(t, 70*0.6+60*0.4+5, TeamStrength(f, 60), 0.001)

	f.WinRate = football.FloatPtr(100)
	f.AvgGoalsFor = football.FloatPtr(6)
	f.AvgGoalsAgainst = football.FloatPtr(0)
	assert.Equal(t, 100.0, TeamStrength(f, 100))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, football.RiskVeryHigh, Classify(football.FloatPtr(2.1), 90, 90))
	assert.Equal(t, football.RiskLow, Classify(nil, 90, 90))
}

func sampleOdds() *football.Odds {
	return &football.Odds{
		FixtureID: 1,
		Bookmakers: []football.Bookmaker{
			{
				Name: "Bet365",
				Markets: []football.Market{
					{Name: "Match Winner", Values: []football.OddValue{
						{Value: "Home", Odd: 1.8}, {Value: "Draw", Odd: 3.6}, {Value: "Away", Odd: 4.2},
					}},
					{Name: "Goals Over/Under First Half", Values: []football.OddValue{
						{Value: "Over 0.5", Odd: 1.4},
					}},
				},
			},
			{
				Name: "Unibet",
				Markets: []football.Market{
					{Name: "Goals Over/Under", Values: []football.OddValue{
						{Value: "Over 1.5", Odd: 1.25}, {Value: "Over 2.5", Odd: 1.9}, {Value: "Under 2.5", Odd: 1.95},
					}},
				},
			},
		},
	}
}

func TestFindOddPrefersExactMarketName(t *testing.T) {
	m, ok := FindOdd(sampleOdds(), "Goals Over/Under", "Over 2.5")
	require.True(t, ok)
	assert.Equal(t, "Unibet", m.Bookmaker)
	assert.Equal(t, "Goals Over/Under", m.Market)
	assert.Equal(t, 1.9, m.Odd)
	assert.True(t, m.Exact)
}

func TestFindOddContainsAndFallbacks(t *testing.T) {
	m, ok := FindOdd(sampleOdds(), "first half", "over 0.5")
	require.True(t, ok)
	assert.Equal(t, 1.4, m.Odd)

	// selection not listed: first value of the market
	m, ok = FindOdd(sampleOdds(), "Match Winner", "Home/Draw")
	require.True(t, ok)
	assert.Equal(t, "Home", m.Value)
	assert.False(t, m.Exact)

	m, ok = FindOdd(sampleOdds(), "match winner", "draw")
	require.True(t, ok)
	assert.Equal(t, 3.6, m.Odd)

	_, ok = FindOdd(sampleOdds(), "Corners Over Under", "Over 9.5")
	assert.False(t, ok)

	_, ok = FindOdd(nil, "Match Winner", "Home")
	assert.False(t, ok)
}

func TestFindOddSearchesEveryBookmakerForSelection(t *testing.T) {
	odds := &football.Odds{
		FixtureID: 2,
		Bookmakers: []football.Bookmaker{
			{
				Name: "BookA",
				Markets: []football.Market{
					{Name: "Goals Over/Under", Values: []football.OddValue{
						{Value: "Over 3.5", Odd: 2.4}, {Value: "Under 3.5", Odd: 1.55},
					}},
					{Name: "Anytime Goal Scorer", Values: []football.OddValue{
						{Value: "Winger", Odd: 3.5},
					}},
				},
			},
			{
				Name: "BookB",
				Markets: []football.Market{
					{Name: "Goals Over/Under", Values: []football.OddValue{
						{Value: "Over 1.5", Odd: 1.45}, {Value: "Over 2.5", Odd: 2.0},
					}},
					{Name: "Anytime Goal Scorer", Values: []football.OddValue{
						{Value: "Striker", Odd: 2.1},
					}},
				},
			},
		},
	}

	m, ok := FindOdd(odds, "Goals Over/Under", "Over 1.5")
	require.True(t, ok)
	assert.Equal(t, "BookB", m.Bookmaker)
	assert.Equal(t, 1.45, m.Odd)
	assert.True(t, m.Exact)
	assert.Equal(t, football.RiskMedium, FromOdd(m.Odd))

	m, ok = FindOdd(odds, "Anytime Goal Scorer", "Striker")
	require.True(t, ok)
	assert.Equal(t, "BookB", m.Bookmaker)
	assert.Equal(t, 2.1, m.Odd)
	assert.True(t, m.Exact)

	// nobody quotes the selection: first value of the first matching market
	m, ok = FindOdd(odds, "Anytime Goal Scorer", "Keeper")
	require.True(t, ok)
	assert.Equal(t, "BookA", m.Bookmaker)
	assert.Equal(t, "Winger", m.Value)
	assert.False(t, m.Exact)
}

func TestFindOddKeepsExactMarketTierFirst(t *testing.T) {
	// the full-time market wins over a first half market that also contains the tag
	odds := &football.Odds{Bookmakers: []football.Bookmaker{
		{Name: "BookA", Markets: []football.Market{
			{Name: "Goals Over/Under First Half", Values: []football.OddValue{{Value: "Over 1.5", Odd: 2.6}}},
		}},
		{Name: "BookB", Markets: []football.Market{
			{Name: "Goals Over/Under", Values: []football.OddValue{{Value: "Over 1.5 Goals", Odd: 1.3}}},
		}},
	}}
	m, ok := FindOdd(odds, "Goals Over/Under", "Over 1.5")
	require.True(t, ok)
	assert.Equal(t, "BookB", m.Bookmaker)
	assert.Equal(t, 1.3, m.Odd)
}
