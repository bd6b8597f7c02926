package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/richard-senior/betscout/pkg/datasource"
	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/analysis"
	"github.com/richard-senior/betscout/pkg/protocol"
	"github.com/richard-senior/betscout/pkg/server"
	"github.com/richard-senior/betscout/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOffline = errors.New("offline")

type fakeTeams struct {
	teams []football.Team
	err   error
	calls int
}

func (f *fakeTeams) SearchTeams(_ context.Context, _ string) ([]football.Team, error) {
	f.calls++
	return f.teams, f.err
}

// fixtureOnly knows the fixture and nothing else
type fixtureOnly struct {
	fixture *football.Fixture
}

func (f fixtureOnly) Fixture(context.Context, int) (*football.Fixture, error) {
	if f.fixture == nil {
		return nil, datasource.ErrNotFound
	}
	return f.fixture, nil
}

func (fixtureOnly) TeamStatistics(context.Context, int, int, int) (*football.TeamStats, error) {
	return nil, errOffline
}

func (fixtureOnly) LastFixtures(context.Context, int, int) ([]football.Fixture, error) {
	return nil, errOffline
}

func (fixtureOnly) HeadToHead(context.Context, int, int, int) ([]football.Fixture, error) {
	return nil, errOffline
}

func (fixtureOnly) FixtureStatistics(context.Context, int) (*football.MatchStats, error) {
	return nil, errOffline
}

func (fixtureOnly) TopScorers(context.Context, int, int) ([]football.PlayerSeason, error) {
	return nil, errOffline
}

func (fixtureOnly) Squad(context.Context, int, int) ([]football.PlayerSeason, error) {
	return nil, errOffline
}

func (fixtureOnly) Odds(context.Context, int) (*football.Odds, error) {
	return nil, errOffline
}

func (fixtureOnly) CurrentLeague(context.Context, int, int) (*football.League, error) {
	return nil, errOffline
}

func testFixture() *football.Fixture {
	return &football.Fixture{
		ID:      555,
		Kickoff: time.Date(2024, 11, 2, 15, 0, 0, 0, time.UTC),
		Status:  "NS",
		League:  football.League{ID: 39, Name: "Premier League", Country: "England", Type: "League", Season: 2024, Round: "Regular Season - 10"},
		Home:    football.Team{ID: 1, Name: "Harbour City"},
		Away:    football.Team{ID: 2, Name: "Valley Rovers"},
	}
}

// a clear home favourite in a high scoring fixture, enough for several rules to fire
func strongHome() analysis.Result {
	return analysis.Result{Analysis: &football.GameAnalysis{
		FixtureID:          555,
		HomeTeam:           "Harbour City",
		AwayTeam:           "Valley Rovers",
		HomeScore:          70,
		AwayScore:          30,
		TotalGoalsExpected: 3.2,
		BothTeamsToScore:   62,
		Confidence:         70,
	}}
}

func args(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func assertInvalidParams(t *testing.T, err error) {
	t.Helper()
	var rpcErr *protocol.JsonRpcError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, protocol.ErrInvalidParams, rpcErr.Code)
}

func TestSearchTeamRanksByDistance(t *testing.T) {
	teams := &fakeTeams{teams: []football.Team{
		{ID: 4, Name: "Barnet"},
		{ID: 3, Name: "Arsenal Tula", Country: "Russia"},
		{ID: 2, Name: "Arsenal W", Country: "England"},
		{ID: 42, Name: "Arsenal", Country: "England"},
	}}
	tb := &Toolbox{Teams: teams}

	out, err := tb.HandleSearchTeam(context.Background(), args(t, map[string]any{"name": "arsenal"}))
	require.NoError(t, err)

	res := out.(map[string]any)
	matches := res["matches"].([]TeamMatch)
	require.Len(t, matches, 4)
	assert.Equal(t, 4, res["count"])
	assert.Equal(t, 42, matches[0].ID)
	assert.Equal(t, 0, matches[0].Distance)
	assert.Equal(t, 1.0, matches[0].Similarity)
	assert.Equal(t, "Arsenal W", matches[1].Name)
	assert.Equal(t, "Arsenal Tula", matches[2].Name)
	assert.Equal(t, "Barnet", matches[3].Name)
}

func TestSearchTeamCapsResults(t *testing.T) {
	var list []football.Team
	for i := 0; i < 15; i++ {
		list = append(list, football.Team{ID: i + 1, Name: "United"})
	}
	tb := &Toolbox{Teams: &fakeTeams{teams: list}}

	out, err := tb.HandleSearchTeam(context.Background(), args(t, map[string]any{"name": "United"}))
	require.NoError(t, err)
	assert.Len(t, out.(map[string]any)["matches"], maxTeamMatches)
}

func TestSearchTeamErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("short query never reaches the provider", func(t *testing.T) {
		teams := &fakeTeams{}
		tb := &Toolbox{Teams: teams}
		_, err := tb.HandleSearchTeam(ctx, args(t, map[string]any{"name": " ab "}))
		assertInvalidParams(t, err)
		assert.Zero(t, teams.calls)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := (&Toolbox{Teams: &fakeTeams{}}).HandleSearchTeam(ctx, args(t, map[string]any{}))
		assertInvalidParams(t, err)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		tb := &Toolbox{Teams: &fakeTeams{err: datasource.ErrNotFound}}
		out, err := tb.HandleSearchTeam(ctx, args(t, map[string]any{"name": "Nowhere Town"}))
		require.NoError(t, err)
		assert.Empty(t, out.(map[string]any)["matches"])
	})

	t.Run("provider failure is a tool error", func(t *testing.T) {
		tb := &Toolbox{Teams: &fakeTeams{err: datasource.ErrUnavailable}}
		out, err := tb.HandleSearchTeam(ctx, args(t, map[string]any{"name": "Arsenal"}))
		require.NoError(t, err)
		tr, ok := out.(*protocol.ToolResult)
		require.True(t, ok)
		assert.True(t, tr.IsError)
	})
}

func TestAnalyseFixtureCreatesSession(t *testing.T) {
	tb := &Toolbox{
		Engine:   &analysis.Engine{Source: fixtureOnly{fixture: testFixture()}},
		Sessions: NewSessionStore(time.Hour),
	}

	out, err := tb.HandleAnalyseFixture(context.Background(), args(t, map[string]any{"fixture_id": 555}))
	require.NoError(t, err)

	res := out.(map[string]any)
	id := res["session_id"].(string)
	assert.NotEmpty(t, id)
	a := res["analysis"].(*football.GameAnalysis)
	assert.Equal(t, 555, a.FixtureID)
	assert.Equal(t, "Harbour City", a.HomeTeam)

	_, ok := tb.Sessions.Get(id)
	assert.True(t, ok)
}

func TestAnalyseFixtureFallsBack(t *testing.T) {
	tb := &Toolbox{Engine: &analysis.Engine{Source: fixtureOnly{}}, Sessions: NewSessionStore(0)}

	out, err := tb.HandleAnalyseFixture(context.Background(), args(t, map[string]any{"fixture_id": "777"}))
	require.NoError(t, err)
	a := out.(map[string]any)["analysis"].(*football.GameAnalysis)
	assert.True(t, a.Fallback)
	assert.Equal(t, 777, a.FixtureID)
	assert.Equal(t, analysis.FallbackConfidence, a.Confidence)
}

func TestAnalyseFixtureRejectsBadIDs(t *testing.T) {
	tb := &Toolbox{Engine: &analysis.Engine{Source: fixtureOnly{}}, Sessions: NewSessionStore(0)}
	for _, v := range []any{nil, 0, -3, 1.5, "abc"} {
		_, err := tb.HandleAnalyseFixture(context.Background(), args(t, map[string]any{"fixture_id": v}))
		assertInvalidParams(t, err)
	}
	assert.Zero(t, tb.Sessions.Len())
}

func TestSuggestBetsNeverRepeatsUntilCycled(t *testing.T) {
	tb := &Toolbox{Sessions: NewSessionStore(time.Hour)}
	sess := tb.Sessions.Create(strongHome())
	ctx := context.Background()

	call := func() map[string]any {
		out, err := tb.HandleSuggestBets(ctx, args(t, map[string]any{"session_id": sess.ID, "limit": 2}))
		require.NoError(t, err)
		return out.(map[string]any)
	}

	first := call()
	total := first["total"].(int)
	require.GreaterOrEqual(t, total, 4)

	seen := map[string]bool{}
	batch := first
	shown := 0
	for {
		list := batch["suggestions"].([]football.BetSuggestion)
		require.LessOrEqual(t, len(list), 2)
		assert.False(t, batch["cycled"].(bool))
		for _, s := range list {
			assert.False(t, seen[s.ID], "suggestion %s repeated", s.ID)
			seen[s.ID] = true
		}
		shown += len(list)
		assert.Equal(t, total-shown, batch["remaining"])
		if batch["remaining"].(int) == 0 {
			break
		}
		batch = call()
	}
	assert.Len(t, seen, total)

	again := call()
	assert.True(t, again["cycled"].(bool))
	assert.Len(t, again["suggestions"], 2)

	// every batch is recorded on the session's analysis
	assert.Len(t, sess.Snapshot().BetSuggestions, total+2)
}

func TestSuggestBetsUsesDefaultLimit(t *testing.T) {
	tb := &Toolbox{Sessions: NewSessionStore(time.Hour), DefaultLimit: 1}
	sess := tb.Sessions.Create(strongHome())

	out, err := tb.HandleSuggestBets(context.Background(), args(t, map[string]any{"session_id": sess.ID}))
	require.NoError(t, err)
	assert.Len(t, out.(map[string]any)["suggestions"], 1)
	assert.Equal(t, 555, out.(map[string]any)["fixture_id"])
}

func TestSuggestBetsErrors(t *testing.T) {
	tb := &Toolbox{Sessions: NewSessionStore(time.Hour)}
	sess := tb.Sessions.Create(strongHome())
	ctx := context.Background()

	_, err := tb.HandleSuggestBets(ctx, args(t, map[string]any{}))
	assertInvalidParams(t, err)

	_, err = tb.HandleSuggestBets(ctx, args(t, map[string]any{"session_id": sess.ID, "limit": 0}))
	assertInvalidParams(t, err)

	_, err = tb.HandleSuggestBets(ctx, args(t, map[string]any{"session_id": sess.ID, "limit": maxSuggestionLimit + 1}))
	assertInvalidParams(t, err)

	out, err := tb.HandleSuggestBets(ctx, args(t, map[string]any{"session_id": "missing"}))
	require.NoError(t, err)
	assert.True(t, out.(*protocol.ToolResult).IsError)
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	a := store.Create(strongHome())
	now = now.Add(30 * time.Second)
	_, ok := store.Get(a.ID)
	require.True(t, ok)

	// Get refreshed the idle clock
	now = now.Add(50 * time.Second)
	_, ok = store.Get(a.ID)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = store.Get(a.ID)
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestSessionStoreDropsOldestWhenFull(t *testing.T) {
	store := NewSessionStore(time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	first := store.Create(strongHome())
	for i := 1; i < maxSessions; i++ {
		now = now.Add(time.Second)
		store.Create(strongHome())
	}
	require.Equal(t, maxSessions, store.Len())

	now = now.Add(time.Second)
	last := store.Create(strongHome())
	assert.Equal(t, maxSessions, store.Len())
	_, ok := store.Get(first.ID)
	assert.False(t, ok)
	_, ok = store.Get(last.ID)
	assert.True(t, ok)
}

func TestToolsOverJsonRpc(t *testing.T) {
	s := server.NewServer(transport.NewStreamTransport(strings.NewReader(""), &bytes.Buffer{}))
	tb := &Toolbox{
		Teams:  &fakeTeams{teams: []football.Team{{ID: 1, Name: "Harbour City"}}},
		Engine: &analysis.Engine{Source: fixtureOnly{fixture: testFixture()}},
	}
	tb.Register(s)
	ctx := context.Background()

	var names []string
	for _, tool := range s.GetTools() {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"search_team", "analyse_fixture", "suggest_bets"}, names)

	callTool := func(name string, arguments any) string {
		req, err := protocol.NewJsonRpcRequest("tools/call", map[string]any{"name": name, "arguments": arguments}, 1)
		require.NoError(t, err)
		resp := s.Handle(ctx, req)
		require.NotNil(t, resp)
		require.Nil(t, resp.Error)
		var tr protocol.ToolResult
		require.NoError(t, json.Unmarshal(resp.Result, &tr))
		require.False(t, tr.IsError, tr.Content[0].Text)
		return tr.Content[0].Text
	}

	var analysed struct {
		SessionID string                `json:"session_id"`
		Analysis  football.GameAnalysis `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal([]byte(callTool("analyse_fixture", map[string]any{"fixture_id": 555})), &analysed))
	require.NotEmpty(t, analysed.SessionID)
	assert.Equal(t, "Valley Rovers", analysed.Analysis.AwayTeam)

	var suggested struct {
		Suggestions []football.BetSuggestion `json:"suggestions"`
		Total       int                      `json:"total"`
		Remaining   int                      `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal([]byte(callTool("suggest_bets", map[string]any{"session_id": analysed.SessionID, "limit": 3})), &suggested))
	assert.NotNil(t, suggested.Suggestions)
	assert.Equal(t, suggested.Total, len(suggested.Suggestions)+suggested.Remaining)

	assert.Contains(t, callTool("search_team", map[string]any{"name": "Harbour"}), `"Harbour City"`)
}
