package structural

import (
	"context"
	"fmt"

	"github.com/richard-senior/betscout/pkg/football"
	"golang.org/x/sync/errgroup"
)

// LeagueResolver finds the domestic league a team currently plays in
type LeagueResolver interface {
	CurrentLeague(ctx context.Context, teamID, season int) (*football.League, error)
}

// Resolved is the outcome of resolving one side's league
type Resolved struct {
	League   football.League
	Resolved bool
	Err      error
}

// Resolve looks up both teams' current leagues concurrently. A side whose lookup fails, or
// returns nothing, keeps the fixture's nominal league; the lookup never aborts the analysis.
func Resolve(ctx context.Context, fixture football.Fixture, resolver LeagueResolver) (home, away Resolved) {
	home = Resolved{League: fixture.League}
	away = Resolved{League: fixture.League}
	if resolver == nil {
		return home, away
	}

	season := fixture.League.Season
	if season == 0 {
		season = football.SeasonForDate(fixture.Kickoff)
	}

	var g errgroup.Group
	lookup := func(teamID int, out *Resolved) func() error {
		return func() error {
			defer func() {
				if r := recover(); r != nil {
					out.Err = fmt.Errorf("league lookup for team %d panicked: %v", teamID, r)
				}
			}()
			l, err := resolver.CurrentLeague(ctx, teamID, season)
			if err != nil {
				out.Err = err
				return nil
			}
			if l != nil && l.Name != "" {
				out.League = *l
				out.Resolved = true
			}
			return nil
		}
	}
	g.Go(lookup(fixture.Home.ID, &home))
	g.Go(lookup(fixture.Away.ID, &away))
	_ = g.Wait()
	return home, away
}
