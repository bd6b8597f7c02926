// Package analysis is the game analysis engine. It fetches everything known about a fixture,
// folds the heuristics into a running home/away score, blends that with the structural model
// and always hands back a usable GameAnalysis.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/catalog"
	"github.com/richard-senior/betscout/pkg/football/structural"
	"go.uber.org/zap"
)

// Engine runs analyses against a Source. Catalog and Structural default to the embedded
// catalogue; a nil Logger discards output.
type Engine struct {
	Source     Source
	Structural structural.Analyzer
	Catalog    *catalog.Catalog
	Logger     *zap.SugaredLogger
}

// Result carries the analysis and the inputs it was computed from.
// Bundle is nil when the fixture itself could not be fetched.
type Result struct {
	Analysis *football.GameAnalysis
	Bundle   *Bundle
}

func (e *Engine) log() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}

func (e *Engine) catalog() *catalog.Catalog {
	if e.Catalog != nil {
		return e.Catalog
	}
	if e.Structural.Catalog != nil {
		return e.Structural.Catalog
	}
	return catalog.Default()
}

// Analyze fetches and evaluates one fixture. It never returns an error: a fixture that cannot
// be fetched, or a panic anywhere on the way, yields the fallback analysis.
func (e *Engine) Analyze(ctx context.Context, fixtureID int) (res Result) {
	start := time.Now()
	fixture := football.Fixture{ID: fixtureID}
	defer func() {
		if r := recover(); r != nil {
			e.log().Errorw("analysis panicked, returning fallback", "fixture", fixtureID, "panic", fmt.Sprint(r))
			res = Result{Analysis: Fallback(fixture), Bundle: res.Bundle}
		}
		observe(res.Analysis, time.Since(start))
	}()

	f, err := e.Source.Fixture(ctx, fixtureID)
	if err != nil || f == nil {
		e.log().Warnw("fixture unavailable, returning fallback", "fixture", fixtureID, "error", err)
		return Result{Analysis: Fallback(fixture)}
	}
	fixture = *f

	b := e.Fetch(ctx, fixture)
	res.Bundle = b
	res.Analysis = e.Evaluate(b)
	e.log().Infow("analysis complete", "fixture", fixtureID, "home", res.Analysis.HomeScore,
		"away", res.Analysis.AwayScore, "confidence", res.Analysis.Confidence, "fallback", res.Analysis.Fallback)
	return res
}

// Evaluate is the pure half of the engine: no I/O, same bundle in, same numbers out
// (GeneratedAt aside). A panic while evaluating yields the fallback for the bundle's fixture.
func (e *Engine) Evaluate(b *Bundle) (a *football.GameAnalysis) {
	if b == nil {
		return Fallback(football.Fixture{})
	}
	defer func() {
		if r := recover(); r != nil {
			e.log().Errorw("evaluation panicked, returning fallback", "fixture", b.Fixture.ID, "panic", fmt.Sprint(r))
			a = Fallback(b.Fixture)
		}
	}()

	log := e.log()
	s := e.newState(b)
	for _, h := range heuristics {
		h.apply(s)
		log.Debugw("heuristic applied", "fixture", b.Fixture.ID, "name", h.name, "home", s.score[sideHome], "away", s.score[sideAway])
	}
	return s.finish()
}

func (e *Engine) newState(b *Bundle) *state {
	cat := e.catalog()
	analyzer := e.Structural
	if analyzer.Catalog == nil {
		analyzer.Catalog = cat
	}
	sa := analyzer.Analyze(structural.Input{
		Fixture: b.Fixture,
		Home: structural.TeamContext{
			Team: b.Fixture.Home, League: b.HomeLeague.League, LeagueResolved: b.HomeLeague.Resolved, Recent: b.HomeRecent,
		},
		Away: structural.TeamContext{
			Team: b.Fixture.Away, League: b.AwayLeague.League, LeagueResolved: b.AwayLeague.Resolved, Recent: b.AwayRecent,
		},
	})

	home, away := b.Forms()
	return &state{
		b:       b,
		cat:     cat,
		sa:      sa,
		teams:   [2]football.Team{b.Fixture.Home, b.Fixture.Away},
		forms:   [2]football.TeamForm{home, away},
		stats:   [2]*football.TeamStats{b.HomeStats, b.AwayStats},
		score:   [2]float64{50, 50},
		band:    bandFor(sa.Comparison.Difference),
		goals:   baselineGoals(home, away),
		btts:    baselineBTTS(home, away),
		rivalry: cat.IsRivalry(b.Fixture.Home.Name, b.Fixture.Away.Name),
	}
}
