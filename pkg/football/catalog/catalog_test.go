package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeagueWeight(t *testing.T) {
	c := Default()

	cases := []struct {
		name, country string
		want          float64
	}{
		{"Premier League", "England", 120},
		{"Bundesliga", "Germany", 120},
		{"2. Bundesliga", "Germany", 70},
		{"3. Liga", "Germany", 50},
		{"Championship", "England", 70},
		{"League One", "England", 50},
		{"League Two", "England", 30},
		{"Serie B", "Italy", 70},
		{"Segunda División", "Spain", 70},
		{"Campionato Sammarinese", "San-Marino", 80},
		{"Premier League", "Russia", 90},
		{"Allsvenskan", "Sweden", 90},
		{"UEFA Champions League", "World", 120},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.LeagueWeight(tc.name, tc.country), "%s (%s)", tc.name, tc.country)
	}
}

func TestPrestigeUsesWholeNameOrAlias(t *testing.T) {
	c := Default()

	assert.Equal(t, 40.0, c.Prestige("Bayern München").Bonus)
	assert.Equal(t, 30.0, c.Prestige("bayern munich").Squad)
	assert.Equal(t, 40.0, c.Prestige("Inter").Bonus)
	assert.Equal(t, 0.0, c.Prestige("Inter Miami").Bonus)
	assert.Equal(t, 20.0, c.Prestige("Tottenham Hotspur").Bonus)
	assert.Equal(t, 10.0, c.Prestige("Olympiacos").Bonus)
	assert.Equal(t, Tier{}, c.Prestige("Forest Green Rovers"))
}

func TestIsRivalry(t *testing.T) {
	c := Default()
	assert.True(t, c.IsRivalry("Barcelona", "Real Madrid"))
	assert.True(t, c.IsRivalry("Man City", "Manchester United"))
	assert.True(t, c.IsRivalry("Roma", "Lazio"))
	assert.False(t, c.IsRivalry("Barcelona", "Sevilla"))
}

func TestCompetitionTypes(t *testing.T) {
	c := Default()

	assert.True(t, c.IsKnockout(football.League{Name: "FA Cup", Type: "Cup"}))
	assert.True(t, c.IsKnockout(football.League{Name: "Coppa Italia"}))
	assert.False(t, c.IsKnockout(football.League{Name: "Premier League", Type: "League"}))
	assert.False(t, c.IsKnockout(football.League{Name: "Friendlies Clubs", Type: "Cup"}))
	assert.True(t, c.IsFriendly(football.League{Name: "Friendlies Clubs"}))

	assert.True(t, c.IsCrucial(football.League{Round: "Final"}))
	assert.True(t, c.IsCrucial(football.League{Round: "Semi-finals"}))
	assert.True(t, c.IsCrucial(football.League{Round: "Regular Season - 36"}))
	assert.False(t, c.IsCrucial(football.League{Round: "Regular Season - 12"}))
	assert.False(t, c.IsCrucial(football.League{}))
}

func TestLoadReplacementCatalog(t *testing.T) {
	data := []byte(`
leagues:
  default_weight: 60
  top:
    weight: 100
    leagues:
      - { name: Local League }
prestige:
  - name: local giant
    bonus: 40
    squad: 30
    clubs: [Town FC]
rivalries:
  - [Town FC, City FC]
`)
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.LeagueWeight("Local League", "Anywhere"))
	assert.Equal(t, 60.0, c.LeagueWeight("Premier League", "England"))
	assert.Equal(t, 40.0, c.Prestige("Town FC").Bonus)
	assert.True(t, c.IsRivalry("City FC", "Town FC"))
}

func TestParseRejectsBadDocuments(t *testing.T) {
	_, err := Parse([]byte("leagues: ["))
	assert.Error(t, err)

	_, err = Parse([]byte("leagues:\n  default_weight: 0\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("leagues:\n  default_weight: 90\nrivalries:\n  - [A]\n"))
	assert.Error(t, err)
}

func TestLoadEmptyPathReturnsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Same(t, Default(), c)
}
