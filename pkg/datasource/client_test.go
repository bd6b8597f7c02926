package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/richard-senior/betscout/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "secret-key"

// fakeProvider serves canned API-Football payloads keyed by path
type fakeProvider struct {
	srv    *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	routes map[string]http.HandlerFunc
}

func newFakeProvider(t *testing.T) *fakeProvider {
	p := &fakeProvider{hits: map[string]int{}, routes: map[string]http.HandlerFunc{}}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.Header.Get("x-apisports-key"))
		p.mu.Lock()
		p.hits[r.URL.Path]++
		h := p.routes[r.URL.Path]
		p.mu.Unlock()
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) handle(path string, h http.HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes[path] = h
}

// serve answers path with an envelope around response
func (p *fakeProvider) serve(path, response string) {
	p.handle(path, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, envelopeOf(response, 1, 1))
	})
}

func (p *fakeProvider) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *fakeProvider) client(cache Cache) *Client {
	return NewClient(ClientConfig{
		BaseURL:    p.srv.URL,
		APIKey:     testKey,
		HTTPClient: p.srv.Client(),
		CacheTTL:   time.Hour,
		Cache:      cache,
	})
}

func envelopeOf(response string, page, pages int) string {
	return fmt.Sprintf(`{"get":"test","parameters":{},"errors":[],"results":1,"paging":{"current":%d,"total":%d},"response":%s}`, page, pages, response)
}

const fixturePayload = `[{
	"fixture": {"id": 868123, "referee": "M. Oliver", "timezone": "UTC", "date": "2024-09-14T11:30:00+00:00",
		"timestamp": 1726313400, "venue": {"id": 494, "name": "Emirates Stadium", "city": "London"},
		"status": {"long": "Match Finished", "short": "FT", "elapsed": 90}},
	"league": {"id": 39, "name": "Premier League", "country": "England", "season": 2024, "round": "Regular Season - 4"},
	"teams": {"home": {"id": 42, "name": "Arsenal", "winner": true}, "away": {"id": 47, "name": "Tottenham", "winner": false}},
	"goals": {"home": 1, "away": 0},
	"score": {"halftime": {"home": 0, "away": null}, "fulltime": {"home": 1, "away": 0}}
}]`

func TestFixtureMapping(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/fixtures", fixturePayload)

	f, err := p.client(nil).Fixture(context.Background(), 868123)
	require.NoError(t, err)

	assert.Equal(t, 868123, f.ID)
	assert.Equal(t, time.Unix(1726313400, 0).UTC(), f.Kickoff)
	assert.Equal(t, "Emirates Stadium", f.Venue)
	assert.Equal(t, "London", f.City)
	assert.Equal(t, "FT", f.Status)
	assert.Equal(t, "M. Oliver", f.Referee)
	assert.Equal(t, 2024, f.League.Season)
	assert.Equal(t, "Regular Season - 4", f.League.Round)
	assert.Equal(t, "Arsenal", f.Home.Name)
	assert.Equal(t, 47, f.Away.ID)
	assert.True(t, f.HasBeenPlayed())
	assert.Equal(t, "1 - 0", f.ScoreString())
	require.NotNil(t, f.HalfTime.Home)
	assert.Nil(t, f.HalfTime.Away, "null stays absent")
}

func TestFixtureNotFound(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/fixtures", `[]`)

	_, err := p.client(nil).Fixture(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTeamStatistics(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/teams/statistics", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("team") {
		case "42":
			fmt.Fprint(w, envelopeOf(`{
				"league": {"id": 39, "season": 2024}, "team": {"id": 42, "name": "Arsenal"}, "form": "WWDLW",
				"fixtures": {"played": {"home": 5, "away": 5, "total": 10}, "wins": {"total": 7},
					"draws": {"total": 2}, "loses": {"total": 1}},
				"goals": {"for": {"total": {"total": 21}}, "against": {"total": {"total": 8}}},
				"clean_sheet": {"total": 4}, "failed_to_score": {"total": null}
			}`, 1, 1))
		case "43":
			fmt.Fprint(w, envelopeOf(`{"league": {"id": 39}, "team": {"id": 43}, "fixtures": {"played": {"total": null}}}`, 1, 1))
		default:
			fmt.Fprint(w, envelopeOf(`[]`, 1, 1))
		}
	})
	c := p.client(nil)
	ctx := context.Background()

	s, err := c.TeamStatistics(ctx, 42, 39, 2024)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Played)
	assert.Equal(t, 7, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 21, s.GoalsFor)
	assert.Equal(t, 8, s.GoalsAgainst)
	assert.Equal(t, 4, s.CleanSheets)
	assert.Equal(t, 0, s.FailedToScore)
	assert.Equal(t, "WWDLW", s.Form)
	assert.Equal(t, 39, s.LeagueID)

	_, err = c.TeamStatistics(ctx, 43, 39, 2024)
	assert.ErrorIs(t, err, ErrNotFound, "no played count means no data")

	_, err = c.TeamStatistics(ctx, 44, 39, 2024)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLastFixturesMostRecentFirst(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/fixtures", `[
		{"fixture": {"id": 1, "timestamp": 1700000000}, "teams": {"home": {"id": 42}, "away": {"id": 9}}, "goals": {"home": 1, "away": 1}},
		{"fixture": {"id": 3, "timestamp": 1720000000}, "teams": {"home": {"id": 9}, "away": {"id": 42}}, "goals": {"home": 0, "away": 2}},
		{"fixture": {"id": 2, "timestamp": 1710000000}, "teams": {"home": {"id": 42}, "away": {"id": 9}}, "goals": {"home": null, "away": null}}
	]`)

	list, err := p.client(nil).LastFixtures(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{list[0].ID, list[1].ID, list[2].ID})
	assert.False(t, list[1].HasBeenPlayed())
}

func TestHeadToHeadNeverMet(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/fixtures/headtohead", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42-47", r.URL.Query().Get("h2h"))
		fmt.Fprint(w, envelopeOf(`[]`, 1, 1))
	})

	list, err := p.client(nil).HeadToHead(context.Background(), 42, 47, 10)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestFixtureStatisticsParsesMixedValues(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/fixtures/statistics", `[
		{"team": {"id": 42}, "statistics": [
			{"type": "Corner Kicks", "value": 7}, {"type": "Yellow Cards", "value": "2"},
			{"type": "Red Cards", "value": null}, {"type": "Ball Possession", "value": "58%"},
			{"type": "Total Shots", "value": 15}, {"type": "Shots on Goal", "value": 6}]},
		{"team": {"id": 47}, "statistics": [{"type": "Corner Kicks", "value": 3}]}
	]`)

	ms, err := p.client(nil).FixtureStatistics(context.Background(), 868123)
	require.NoError(t, err)
	require.Len(t, ms.Teams, 2)

	home, ok := ms.For(42)
	require.True(t, ok)
	assert.Equal(t, 7, *home.Corners)
	assert.Equal(t, 2, *home.YellowCards)
	assert.Nil(t, home.RedCards)
	assert.Equal(t, 2, *home.Cards())
	assert.InDelta(t, 58.0, *home.Possession, 1e-9)
	assert.Equal(t, 6, *home.ShotsOnTarget)

	away, ok := ms.Against(42)
	require.True(t, ok)
	assert.Equal(t, 3, *away.Corners)
	assert.Nil(t, away.YellowCards)
}

func TestOddsParsing(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/odds", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fixture") == "2" {
			fmt.Fprint(w, envelopeOf(`[]`, 1, 1))
			return
		}
		fmt.Fprint(w, envelopeOf(`[{"fixture": {"id": 1}, "bookmakers": [
			{"id": 8, "name": "Bet365", "bets": [
				{"id": 1, "name": "Match Winner", "values": [{"value": "Home", "odd": "1.85"}, {"value": "Draw", "odd": "3.60"}]},
				{"id": 5, "name": "Goals Over/Under", "values": [{"value": "Over 2.5", "odd": 2.1}, {"value": "Under 2.5", "odd": "1.00"}]},
				{"id": 99, "name": "Broken", "values": [{"value": "X", "odd": "n/a"}]}
			]}
		]}]`, 1, 1))
	})
	c := p.client(nil)

	o, err := c.Odds(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, o.Bookmakers, 1)
	bm := o.Bookmakers[0]
	assert.Equal(t, "Bet365", bm.Name)
	require.Len(t, bm.Markets, 2, "markets with no usable price are dropped")
	assert.Equal(t, 1.85, bm.Markets[0].Values[0].Odd)
	require.Len(t, bm.Markets[1].Values, 1)
	assert.Equal(t, "Over 2.5", bm.Markets[1].Values[0].Value)

	none, err := c.Odds(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, none.Empty())
}

func TestSquadFollowsPaging(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/players", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, envelopeOf(`[{"player": {"id": 1, "name": "B. Saka"}, "statistics": [
				{"team": {"id": 42, "name": "Arsenal"}, "league": {"id": 39}, "games": {"appearences": 10, "minutes": 850, "position": "Attacker"},
					"goals": {"total": 5, "assists": 4}, "cards": {"yellow": 1, "red": 0}},
				{"team": {"id": 42, "name": "Arsenal"}, "league": {"id": 2}, "games": {"appearences": 4, "minutes": 300},
					"goals": {"total": 2, "assists": null}, "cards": {"yellow": null, "red": null}},
				{"team": {"id": 1111, "name": "England"}, "league": {"id": 10}, "games": {"appearences": 3},
					"goals": {"total": 1}, "cards": {}}
			]}]`, 1, 2))
		case "2":
			fmt.Fprint(w, envelopeOf(`[{"player": {"id": 2, "name": "D. Raya"}, "statistics": [
				{"team": {"id": 42, "name": "Arsenal"}, "games": {"appearences": 14, "position": "Goalkeeper"}, "goals": {"total": 0}, "cards": {"yellow": 2}}
			]}]`, 2, 2))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})

	squad, err := p.client(nil).Squad(context.Background(), 42, 2024)
	require.NoError(t, err)
	require.Len(t, squad, 2)

	saka := squad[0]
	assert.Equal(t, "B. Saka", saka.Name)
	assert.Equal(t, 14, saka.Appearances, "only lines for the requested team are summed")
	assert.Equal(t, 7, saka.Goals)
	assert.Equal(t, 4, saka.Assists)
	assert.Equal(t, "Attacker", saka.Position)
	assert.Equal(t, "Goalkeeper", squad[1].Position)
	assert.Equal(t, 2, p.count("/players"))
}

func TestTopScorersRank(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/players/topscorers", `[
		{"player": {"id": 1, "name": "E. Haaland"}, "statistics": [{"team": {"id": 50, "name": "Manchester City"}, "games": {"appearences": 20}, "goals": {"total": 18}}]},
		{"player": {"id": 2, "name": "No Lines"}, "statistics": []},
		{"player": {"id": 3, "name": "M. Salah"}, "statistics": [{"team": {"id": 40, "name": "Liverpool"}, "games": {"appearences": 20}, "goals": {"total": 15}}]}
	]`)

	list, err := p.client(nil).TopScorers(context.Background(), 39, 2024)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Rank)
	assert.Equal(t, 50, list[0].TeamID)
	assert.Equal(t, 3, list[1].Rank, "rank is the provider position")
	assert.InDelta(t, 0.75, *list[1].GoalsPerAppearance(), 1e-9)
}

func TestCurrentLeaguePrefersLeague(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/leagues", `[
		{"league": {"id": 2, "name": "UEFA Champions League", "type": "Cup"}, "country": {"name": "World"}},
		{"league": {"id": 39, "name": "Premier League", "type": "League"}, "country": {"name": "England"}},
		{"league": {"id": 45, "name": "FA Cup", "type": "Cup"}, "country": {"name": "England"}}
	]`)

	l, err := p.client(nil).CurrentLeague(context.Background(), 42, 2024)
	require.NoError(t, err)
	assert.Equal(t, 39, l.ID)
	assert.Equal(t, "England", l.Country)
	assert.Equal(t, 2024, l.Season)
}

func TestSearchTeams(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/teams", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "arsenal", r.URL.Query().Get("search"))
		fmt.Fprint(w, envelopeOf(`[{"team": {"id": 42, "name": "Arsenal", "country": "England", "founded": 1886, "national": false}, "venue": {"name": "Emirates Stadium"}}]`, 1, 1))
	})
	c := p.client(nil)

	teams, err := c.SearchTeams(context.Background(), " arsenal ")
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "England", teams[0].Country)
	assert.Equal(t, 1886, *teams[0].Founded)

	_, err = c.SearchTeams(context.Background(), "ar")
	assert.Error(t, err)
	assert.Equal(t, 1, p.count("/teams"), "short queries never reach the provider")
}

func TestResponsesAreCached(t *testing.T) {
	cache, err := NewSQLiteCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	p := newFakeProvider(t)
	p.serve("/fixtures", fixturePayload)
	c := p.client(cache)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f, err := c.Fixture(ctx, 868123)
		require.NoError(t, err)
		assert.Equal(t, "Arsenal", f.Home.Name)
	}
	assert.Equal(t, 1, p.count("/fixtures"))

	_, err = c.Fixture(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, p.count("/fixtures"), "a different query is a different key")
}

func TestProviderErrorsAreNotCached(t *testing.T) {
	cache, err := NewSQLiteCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	p := newFakeProvider(t)
	p.handle("/fixtures", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"get":"fixtures","errors":{"requests":"You have reached the request limit for the day"},"results":0,"response":[]}`)
	})
	c := p.client(cache)

	for i := 0; i < 2; i++ {
		_, err := c.Fixture(context.Background(), 1)
		require.ErrorIs(t, err, ErrProvider)
		assert.Contains(t, err.Error(), "request limit")
	}
	assert.Equal(t, 2, p.count("/fixtures"))
}

func TestNotFoundStatus(t *testing.T) {
	p := newFakeProvider(t)
	_, err := p.client(nil).Fixture(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	p := newFakeProvider(t)
	p.handle("/fixtures", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	c := p.client(nil)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := c.Fixture(ctx, i)
		var se *transport.StatusError
		require.True(t, errors.As(err, &se), "attempt %d: %v", i, err)
		assert.Equal(t, http.StatusBadGateway, se.Code)
	}

	_, err := c.Fixture(ctx, 6)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 5, p.count("/fixtures"), "an open breaker sends nothing")
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	p := newFakeProvider(t)
	c := p.client(nil)
	for i := 1; i <= 6; i++ {
		_, err := c.Fixture(context.Background(), i)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 6, p.count("/fixtures"))
}

func TestCancelledRateLimitWait(t *testing.T) {
	p := newFakeProvider(t)
	p.serve("/fixtures", fixturePayload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.client(nil).Fixture(ctx, 868123)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 0, p.count("/fixtures"))
}

func TestCancelledCallerDoesNotCancelSharedFetch(t *testing.T) {
	cache, err := NewSQLiteCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	p := newFakeProvider(t)
	entered := make(chan struct{}, 1)
	release := make(chan struct{})
	p.handle("/fixtures", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		fmt.Fprint(w, envelopeOf(fixturePayload, 1, 1))
	})
	c := p.client(cache)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Fixture(ctx, 868123)
		firstErr <- err
	}()
	<-entered
	cancel()
	assert.ErrorIs(t, <-firstErr, ErrUnavailable)

	second := make(chan error, 1)
	go func() {
		f, err := c.Fixture(context.Background(), 868123)
		if err == nil {
			assert.Equal(t, "Arsenal", f.Home.Name)
		}
		second <- err
	}()
	close(release)
	require.NoError(t, <-second)
	assert.Equal(t, 1, p.count("/fixtures"), "the second caller shares the fetch or reads its cached result")
}
