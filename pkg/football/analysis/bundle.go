package analysis

import (
	"context"
	"fmt"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/form"
	"github.com/richard-senior/betscout/pkg/football/structural"
	"github.com/richard-senior/betscout/pkg/football/suggest"
	"golang.org/x/sync/errgroup"
)

// BoxscoreWindow is how many recent matches per team have their per-match statistics fetched
const BoxscoreWindow = 5

// Source is the statistics provider as seen by the engine.
// Every method may fail independently; a failure only removes that input.
type Source interface {
	Fixture(ctx context.Context, fixtureID int) (*football.Fixture, error)
	TeamStatistics(ctx context.Context, teamID, leagueID, season int) (*football.TeamStats, error)
	LastFixtures(ctx context.Context, teamID, n int) ([]football.Fixture, error)
	HeadToHead(ctx context.Context, homeID, awayID, n int) ([]football.Fixture, error)
	FixtureStatistics(ctx context.Context, fixtureID int) (*football.MatchStats, error)
	TopScorers(ctx context.Context, leagueID, season int) ([]football.PlayerSeason, error)
	Squad(ctx context.Context, teamID, season int) ([]football.PlayerSeason, error)
	Odds(ctx context.Context, fixtureID int) (*football.Odds, error)
	CurrentLeague(ctx context.Context, teamID, season int) (*football.League, error)
}

// Bundle is every input fetched for one fixture.
// A nil field means the fetch failed or returned nothing. For HeadToHead an empty, non-nil
// slice means the provider answered and the sides have never met.
type Bundle struct {
	Fixture        football.Fixture
	HomeLeague     structural.Resolved
	AwayLeague     structural.Resolved
	HomeStats      *football.TeamStats
	AwayStats      *football.TeamStats
	HomeRecent     []football.Fixture
	AwayRecent     []football.Fixture
	HeadToHead     []football.Fixture
	HomeMatchStats []football.MatchStats
	AwayMatchStats []football.MatchStats
	TopScorers     []football.PlayerSeason
	HomeSquad      []football.PlayerSeason
	AwaySquad      []football.PlayerSeason
	Odds           *football.Odds
}

// Forms runs the form analyzer over both recent-match lists
func (b *Bundle) Forms() (home, away football.TeamForm) {
	return form.Analyze(b.HomeRecent, b.Fixture.Home.ID), form.Analyze(b.AwayRecent, b.Fixture.Away.ID)
}

// SuggestionInput packages the bundle and a computed analysis for the suggestion generator
func (b *Bundle) SuggestionInput(a *football.GameAnalysis) suggest.Input {
	home, away := b.Forms()
	return suggest.Input{
		Fixture:    b.Fixture,
		Analysis:   a,
		HomeForm:   home,
		AwayForm:   away,
		HomeRecent: b.HomeRecent,
		AwayRecent: b.AwayRecent,
		HomeStats:  b.HomeStats,
		AwayStats:  b.AwayStats,
		Odds:       b.Odds,
		TopScorers: b.TopScorers,
		HomeSquad:  b.HomeSquad,
		AwaySquad:  b.AwaySquad,
	}
}

func seasonOf(f football.Fixture) int {
	if f.League.Season != 0 {
		return f.League.Season
	}
	return football.SeasonForDate(f.Kickoff)
}

// Fetch issues every provider read for the fixture concurrently. Reads that depend on the
// resolved domestic leagues (season stats, top scorers) run after resolution; everything
// else starts immediately. Each goroutine writes only its own fields.
func (e *Engine) Fetch(ctx context.Context, fixture football.Fixture) *Bundle {
	b := &Bundle{Fixture: fixture}
	log := e.log()
	season := seasonOf(fixture)
	homeID, awayID := fixture.Home.ID, fixture.Away.ID

	var g errgroup.Group
	g.Go(e.guard("leagues", fixture.ID, func() {
		b.HomeLeague, b.AwayLeague = structural.Resolve(ctx, fixture, e.Source)
		for _, r := range []structural.Resolved{b.HomeLeague, b.AwayLeague} {
			if r.Err != nil {
				log.Warnw("league resolution failed, using fixture league", "fixture", fixture.ID, "error", r.Err)
			}
		}

		var inner errgroup.Group
		inner.Go(e.guard("home statistics", fixture.ID, func() {
			b.HomeStats = e.teamStats(ctx, homeID, b.HomeLeague.League, season)
		}))
		inner.Go(e.guard("away statistics", fixture.ID, func() {
			b.AwayStats = e.teamStats(ctx, awayID, b.AwayLeague.League, season)
		}))
		inner.Go(e.guard("top scorers", fixture.ID, func() {
			b.TopScorers = e.topScorers(ctx, season, b.HomeLeague.League, b.AwayLeague.League)
		}))
		_ = inner.Wait()
	}))
	g.Go(e.guard("home recent", fixture.ID, func() {
		b.HomeRecent, b.HomeMatchStats = e.recent(ctx, homeID)
	}))
	g.Go(e.guard("away recent", fixture.ID, func() {
		b.AwayRecent, b.AwayMatchStats = e.recent(ctx, awayID)
	}))
	g.Go(e.guard("head to head", fixture.ID, func() {
		h2h, err := e.Source.HeadToHead(ctx, homeID, awayID, form.MaxMatches)
		if err != nil {
			log.Warnw("head to head unavailable", "fixture", fixture.ID, "error", err)
			return
		}
		if h2h == nil {
			h2h = []football.Fixture{}
		}
		b.HeadToHead = h2h
	}))
	g.Go(e.guard("home squad", fixture.ID, func() {
		b.HomeSquad = e.squad(ctx, homeID, season)
	}))
	g.Go(e.guard("away squad", fixture.ID, func() {
		b.AwaySquad = e.squad(ctx, awayID, season)
	}))
	g.Go(e.guard("odds", fixture.ID, func() {
		odds, err := e.Source.Odds(ctx, fixture.ID)
		if err != nil {
			log.Warnw("odds unavailable", "fixture", fixture.ID, "error", err)
			return
		}
		if !odds.Empty() {
			b.Odds = odds
		}
	}))
	_ = g.Wait()
	return b
}

// guard runs fn as an errgroup task. A panic is logged and leaves whatever fn would have set
// absent; recover in Analyze cannot reach these goroutines.
func (e *Engine) guard(what string, fixtureID int, fn func()) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				e.log().Errorw("fetch panicked, input dropped", "input", what, "fixture", fixtureID, "panic", fmt.Sprint(r))
			}
		}()
		fn()
		return nil
	}
}

func (e *Engine) teamStats(ctx context.Context, teamID int, league football.League, season int) *football.TeamStats {
	if league.ID == 0 {
		return nil
	}
	if league.Season != 0 {
		season = league.Season
	}
	s, err := e.Source.TeamStatistics(ctx, teamID, league.ID, season)
	if err != nil {
		e.log().Warnw("team statistics unavailable", "team", teamID, "league", league.ID, "error", err)
		return nil
	}
	return s
}

// topScorers merges the rankings of the distinct leagues the two sides play in
func (e *Engine) topScorers(ctx context.Context, season int, leagues ...football.League) []football.PlayerSeason {
	seen := map[int]bool{}
	var out []football.PlayerSeason
	for _, l := range leagues {
		if l.ID == 0 || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		s := season
		if l.Season != 0 {
			s = l.Season
		}
		list, err := e.Source.TopScorers(ctx, l.ID, s)
		if err != nil {
			e.log().Warnw("top scorers unavailable", "league", l.ID, "error", err)
			continue
		}
		out = append(out, list...)
	}
	return out
}

func (e *Engine) squad(ctx context.Context, teamID, season int) []football.PlayerSeason {
	list, err := e.Source.Squad(ctx, teamID, season)
	if err != nil {
		e.log().Warnw("squad unavailable", "team", teamID, "error", err)
		return nil
	}
	return list
}

// recent fetches the last matches for a team and then the per-match statistics of the most
// recent played ones. A failed statistics fetch drops only that match from the sample.
func (e *Engine) recent(ctx context.Context, teamID int) ([]football.Fixture, []football.MatchStats) {
	log := e.log()
	list, err := e.Source.LastFixtures(ctx, teamID, form.MaxMatches)
	if err != nil {
		log.Warnw("recent matches unavailable", "team", teamID, "error", err)
		return nil, nil
	}
	if list == nil {
		list = []football.Fixture{}
	}

	played := form.Last(list, BoxscoreWindow)
	if len(played) == 0 {
		return list, nil
	}
	results := make([]*football.MatchStats, len(played))
	var g errgroup.Group
	g.SetLimit(BoxscoreWindow)
	for i, m := range played {
		g.Go(e.guard("match statistics", m.ID, func() {
			ms, err := e.Source.FixtureStatistics(ctx, m.ID)
			if err != nil {
				log.Debugw("match statistics unavailable", "fixture", m.ID, "error", err)
				return
			}
			results[i] = ms
		}))
	}
	_ = g.Wait()

	var stats []football.MatchStats
	for _, ms := range results {
		if ms != nil && len(ms.Teams) > 0 {
			stats = append(stats, *ms)
		}
	}
	return list, stats
}
