package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
)

// maxSquadPages bounds the paged squad endpoint, 20 players a page
const maxSquadPages = 5

func itoa(v int) string {
	return strconv.Itoa(v)
}

// SearchTeams returns the teams whose name matches query. The provider needs at least three
// characters.
func (c *Client) SearchTeams(ctx context.Context, query string) ([]football.Team, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < 3 {
		return nil, fmt.Errorf("team search needs at least 3 characters, got %q", query)
	}
	env, err := c.get(ctx, "/teams", url.Values{"search": {q}}, c.ttl)
	if err != nil {
		return nil, err
	}
	entries, err := decode[[]apiTeamEntry](env, "teams "+q)
	if err != nil {
		return nil, err
	}
	out := make([]football.Team, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Team.toTeam())
	}
	return out, nil
}

// Fixture returns one fixture by id
func (c *Client) Fixture(ctx context.Context, fixtureID int) (*football.Fixture, error) {
	env, err := c.get(ctx, "/fixtures", url.Values{"id": {itoa(fixtureID)}}, c.liveTTL())
	if err != nil {
		return nil, err
	}
	list, err := decode[[]apiFixture](env, "fixture "+itoa(fixtureID))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("fixture %d: %w", fixtureID, ErrNotFound)
	}
	f := list[0].toFixture()
	return &f, nil
}

// TeamStatistics returns a team's season aggregate in one competition
func (c *Client) TeamStatistics(ctx context.Context, teamID, leagueID, season int) (*football.TeamStats, error) {
	params := url.Values{"team": {itoa(teamID)}, "league": {itoa(leagueID)}, "season": {itoa(season)}}
	env, err := c.get(ctx, "/teams/statistics", params, c.ttl)
	if err != nil {
		return nil, err
	}
	what := fmt.Sprintf("statistics team=%d league=%d season=%d", teamID, leagueID, season)
	raw, err := decode[apiTeamStatistics](env, what)
	if err != nil {
		return nil, err
	}
	stats := raw.toStats(teamID, leagueID, season)
	if stats == nil {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return stats, nil
}

// LastFixtures returns the team's last n fixtures, most recent first
func (c *Client) LastFixtures(ctx context.Context, teamID, n int) ([]football.Fixture, error) {
	env, err := c.get(ctx, "/fixtures", url.Values{"team": {itoa(teamID)}, "last": {itoa(n)}}, c.ttl)
	if err != nil {
		return nil, err
	}
	return fixturesOf(env, "last fixtures team="+itoa(teamID))
}

// HeadToHead returns up to n previous meetings between the two teams, most recent first.
// Never having met is an empty list, not an error.
func (c *Client) HeadToHead(ctx context.Context, homeID, awayID, n int) ([]football.Fixture, error) {
	params := url.Values{"h2h": {fmt.Sprintf("%d-%d", homeID, awayID)}, "last": {itoa(n)}}
	env, err := c.get(ctx, "/fixtures/headtohead", params, c.ttl)
	if err != nil {
		return nil, err
	}
	if env.empty() {
		return []football.Fixture{}, nil
	}
	return fixturesOf(env, "head to head")
}

func fixturesOf(env *envelope, what string) ([]football.Fixture, error) {
	list, err := decode[[]apiFixture](env, what)
	if err != nil {
		return nil, err
	}
	out := make([]football.Fixture, 0, len(list))
	for _, f := range list {
		out = append(out, f.toFixture())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Kickoff.After(out[j].Kickoff) })
	return out, nil
}

// FixtureStatistics returns the boxscore of a completed fixture
func (c *Client) FixtureStatistics(ctx context.Context, fixtureID int) (*football.MatchStats, error) {
	env, err := c.get(ctx, "/fixtures/statistics", url.Values{"fixture": {itoa(fixtureID)}}, c.ttl)
	if err != nil {
		return nil, err
	}
	list, err := decode[[]apiFixtureStatistics](env, "fixture statistics "+itoa(fixtureID))
	if err != nil {
		return nil, err
	}
	ms := &football.MatchStats{FixtureID: fixtureID}
	for _, s := range list {
		ms.Teams = append(ms.Teams, s.toTeamMatchStats())
	}
	return ms, nil
}

// TopScorers returns the competition's scoring chart in provider rank order
func (c *Client) TopScorers(ctx context.Context, leagueID, season int) ([]football.PlayerSeason, error) {
	params := url.Values{"league": {itoa(leagueID)}, "season": {itoa(season)}}
	env, err := c.get(ctx, "/players/topscorers", params, c.ttl)
	if err != nil {
		return nil, err
	}
	list, err := decode[[]apiPlayerEntry](env, "top scorers league="+itoa(leagueID))
	if err != nil {
		return nil, err
	}
	out := make([]football.PlayerSeason, 0, len(list))
	for i, p := range list {
		ps, ok := p.toPlayerSeason(0)
		if !ok {
			continue
		}
		ps.Rank = i + 1
		out = append(out, ps)
	}
	return out, nil
}

// Squad returns the season lines of every player registered to the team, following the
// provider's paging
func (c *Client) Squad(ctx context.Context, teamID, season int) ([]football.PlayerSeason, error) {
	var out []football.PlayerSeason
	for page := 1; page <= maxSquadPages; page++ {
		params := url.Values{"team": {itoa(teamID)}, "season": {itoa(season)}, "page": {itoa(page)}}
		env, err := c.get(ctx, "/players", params, c.ttl)
		if err != nil {
			if page > 1 {
				c.log.Debugw("Squad page failed, keeping earlier pages", "team", teamID, "page", page, "error", err)
				break
			}
			return nil, err
		}
		if env.empty() {
			break
		}
		list, err := decode[[]apiPlayerEntry](env, "squad team="+itoa(teamID))
		if err != nil {
			return nil, err
		}
		for _, p := range list {
			if ps, ok := p.toPlayerSeason(teamID); ok {
				out = append(out, ps)
			}
		}
		if env.Paging.Total <= page {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("squad team=%d season=%d: %w", teamID, season, ErrNotFound)
	}
	return out, nil
}

// Odds returns the pre-match odds of a fixture. No published odds is an empty payload.
func (c *Client) Odds(ctx context.Context, fixtureID int) (*football.Odds, error) {
	env, err := c.get(ctx, "/odds", url.Values{"fixture": {itoa(fixtureID)}}, c.liveTTL())
	if err != nil {
		return nil, err
	}
	if env.empty() {
		return &football.Odds{FixtureID: fixtureID}, nil
	}
	list, err := decode[[]apiOdds](env, "odds "+itoa(fixtureID))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &football.Odds{FixtureID: fixtureID}, nil
	}
	return list[0].toOdds(fixtureID), nil
}

// CurrentLeague returns the domestic league the team plays in this season. Cups are only
// returned when the team is registered in nothing else.
func (c *Client) CurrentLeague(ctx context.Context, teamID, season int) (*football.League, error) {
	env, err := c.get(ctx, "/leagues", url.Values{"team": {itoa(teamID)}, "season": {itoa(season)}}, c.ttl)
	if err != nil {
		return nil, err
	}
	list, err := decode[[]apiLeagueEntry](env, "leagues team="+itoa(teamID))
	if err != nil {
		return nil, err
	}
	var cup *football.League
	for _, e := range list {
		l := football.League{
			ID:      e.League.ID,
			Name:    strings.TrimSpace(e.League.Name),
			Country: e.Country.Name,
			Type:    e.League.Type,
			Season:  season,
		}
		if strings.EqualFold(l.Type, "League") {
			return &l, nil
		}
		if cup == nil {
			cup = &l
		}
	}
	if cup != nil {
		return cup, nil
	}
	return nil, fmt.Errorf("leagues team=%d: %w", teamID, ErrNotFound)
}
