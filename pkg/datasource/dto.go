package datasource

import (
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/util"
)

// Provider payload shapes. Everything the provider may leave out or send as null is a pointer
// or an interface so that missing is never read as zero.

type apiTeam struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Country  *string `json:"country"`
	Founded  *int    `json:"founded"`
	National bool    `json:"national"`
	Logo     string  `json:"logo"`
}

type apiVenue struct {
	Name *string `json:"name"`
	City *string `json:"city"`
}

type apiLeague struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Type    string `json:"type"`
	Season  int    `json:"season"`
	Round   string `json:"round"`
}

type apiScore struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type apiFixture struct {
	Fixture struct {
		ID        int      `json:"id"`
		Referee   *string  `json:"referee"`
		Date      string   `json:"date"`
		Timestamp int64    `json:"timestamp"`
		Venue     apiVenue `json:"venue"`
		Status    struct {
			Long    string `json:"long"`
			Short   string `json:"short"`
			Elapsed *int   `json:"elapsed"`
		} `json:"status"`
	} `json:"fixture"`
	League apiLeague `json:"league"`
	Teams  struct {
		Home apiTeam `json:"home"`
		Away apiTeam `json:"away"`
	} `json:"teams"`
	Goals apiScore `json:"goals"`
	Score struct {
		Halftime apiScore `json:"halftime"`
	} `json:"score"`
}

type apiTeamEntry struct {
	Team  apiTeam  `json:"team"`
	Venue apiVenue `json:"venue"`
}

type apiSplit struct {
	Home  *int `json:"home"`
	Away  *int `json:"away"`
	Total *int `json:"total"`
}

type apiTeamStatistics struct {
	League   apiLeague `json:"league"`
	Team     apiTeam   `json:"team"`
	Form     *string   `json:"form"`
	Fixtures struct {
		Played apiSplit `json:"played"`
		Wins   apiSplit `json:"wins"`
		Draws  apiSplit `json:"draws"`
		Loses  apiSplit `json:"loses"`
	} `json:"fixtures"`
	Goals struct {
		For struct {
			Total apiSplit `json:"total"`
		} `json:"for"`
		Against struct {
			Total apiSplit `json:"total"`
		} `json:"against"`
	} `json:"goals"`
	CleanSheet    apiSplit `json:"clean_sheet"`
	FailedToScore apiSplit `json:"failed_to_score"`
}

type apiFixtureStatistics struct {
	Team       apiTeam `json:"team"`
	Statistics []struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	} `json:"statistics"`
}

type apiPlayerEntry struct {
	Player struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"player"`
	Statistics []struct {
		Team   apiTeam   `json:"team"`
		League apiLeague `json:"league"`
		Games  struct {
			Appearences *int    `json:"appearences"`
			Minutes     *int    `json:"minutes"`
			Position    *string `json:"position"`
		} `json:"games"`
		Goals struct {
			Total   *int `json:"total"`
			Assists *int `json:"assists"`
		} `json:"goals"`
		Cards struct {
			Yellow *int `json:"yellow"`
			Red    *int `json:"red"`
		} `json:"cards"`
	} `json:"statistics"`
}

type apiOdds struct {
	Fixture struct {
		ID int `json:"id"`
	} `json:"fixture"`
	Bookmakers []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Bets []struct {
			ID     int    `json:"id"`
			Name   string `json:"name"`
			Values []struct {
				Value any `json:"value"`
				Odd   any `json:"odd"`
			} `json:"values"`
		} `json:"bets"`
	} `json:"bookmakers"`
}

type apiLeagueEntry struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"league"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
	Seasons []struct {
		Year    int  `json:"year"`
		Current bool `json:"current"`
	} `json:"seasons"`
}

/////////////////////////////////////////////////////////////////////////
////// Mapping
/////////////////////////////////////////////////////////////////////////

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func num(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (t apiTeam) toTeam() football.Team {
	return football.Team{
		ID:       t.ID,
		Name:     strings.TrimSpace(t.Name),
		Country:  str(t.Country),
		Founded:  t.Founded,
		National: t.National,
		Logo:     t.Logo,
	}
}

func (l apiLeague) toLeague() football.League {
	return football.League{
		ID:      l.ID,
		Name:    strings.TrimSpace(l.Name),
		Country: l.Country,
		Type:    l.Type,
		Season:  l.Season,
		Round:   l.Round,
	}
}

func (f apiFixture) toFixture() football.Fixture {
	kickoff := time.Unix(f.Fixture.Timestamp, 0).UTC()
	if f.Fixture.Timestamp == 0 {
		if t, err := time.Parse(time.RFC3339, f.Fixture.Date); err == nil {
			kickoff = t.UTC()
		} else {
			kickoff = time.Time{}
		}
	}
	return football.Fixture{
		ID:       f.Fixture.ID,
		Kickoff:  kickoff,
		Venue:    str(f.Fixture.Venue.Name),
		City:     str(f.Fixture.Venue.City),
		Status:   f.Fixture.Status.Short,
		Referee:  str(f.Fixture.Referee),
		League:   f.League.toLeague(),
		Home:     f.Teams.Home.toTeam(),
		Away:     f.Teams.Away.toTeam(),
		Goals:    football.Score{Home: f.Goals.Home, Away: f.Goals.Away},
		HalfTime: football.Score{Home: f.Score.Halftime.Home, Away: f.Score.Halftime.Away},
	}
}

// toStats returns nil when the provider has no played count, which it does for teams it
// holds no data on in that competition
func (s apiTeamStatistics) toStats(teamID, leagueID, season int) *football.TeamStats {
	if s.Fixtures.Played.Total == nil {
		return nil
	}
	return &football.TeamStats{
		TeamID:        teamID,
		LeagueID:      leagueID,
		Season:        season,
		Played:        num(s.Fixtures.Played.Total),
		Wins:          num(s.Fixtures.Wins.Total),
		Draws:         num(s.Fixtures.Draws.Total),
		Losses:        num(s.Fixtures.Loses.Total),
		GoalsFor:      num(s.Goals.For.Total.Total),
		GoalsAgainst:  num(s.Goals.Against.Total.Total),
		CleanSheets:   num(s.CleanSheet.Total),
		FailedToScore: num(s.FailedToScore.Total),
		Form:          str(s.Form),
	}
}

// statInt reads a boxscore value: a number, a numeric string, a percentage or null
func statInt(v any) *int {
	f := statFloat(v)
	if f == nil {
		return nil
	}
	return football.IntPtr(int(*f))
}

func statFloat(v any) *float64 {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		return &t
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func (s apiFixtureStatistics) toTeamMatchStats() football.TeamMatchStats {
	out := football.TeamMatchStats{TeamID: s.Team.ID}
	for _, st := range s.Statistics {
		switch strings.ToLower(strings.TrimSpace(st.Type)) {
		case "corner kicks":
			out.Corners = statInt(st.Value)
		case "yellow cards":
			out.YellowCards = statInt(st.Value)
		case "red cards":
			out.RedCards = statInt(st.Value)
		case "total shots":
			out.Shots = statInt(st.Value)
		case "shots on goal":
			out.ShotsOnTarget = statInt(st.Value)
		case "ball possession":
			out.Possession = statFloat(st.Value)
		}
	}
	return out
}

// toPlayerSeason sums the player's lines for teamID, or every line when teamID is zero
func (p apiPlayerEntry) toPlayerSeason(teamID int) (football.PlayerSeason, bool) {
	ps := football.PlayerSeason{PlayerID: p.Player.ID, Name: strings.TrimSpace(p.Player.Name)}
	found := false
	for _, st := range p.Statistics {
		if teamID != 0 && st.Team.ID != teamID {
			continue
		}
		if !found {
			ps.TeamID = st.Team.ID
			ps.TeamName = st.Team.Name
			ps.Position = str(st.Games.Position)
			found = true
		}
		ps.Appearances += num(st.Games.Appearences)
		ps.Minutes += num(st.Games.Minutes)
		ps.Goals += num(st.Goals.Total)
		ps.Assists += num(st.Goals.Assists)
		ps.YellowCards += num(st.Cards.Yellow)
		ps.RedCards += num(st.Cards.Red)
	}
	return ps, found
}

func (o apiOdds) toOdds(fixtureID int) *football.Odds {
	out := &football.Odds{FixtureID: fixtureID}
	for _, bm := range o.Bookmakers {
		b := football.Bookmaker{ID: bm.ID, Name: bm.Name}
		for _, bet := range bm.Bets {
			m := football.Market{ID: bet.ID, Name: bet.Name}
			for _, v := range bet.Values {
				odd := statFloat(v.Odd)
				if odd == nil || *odd <= 1 || v.Value == nil {
					continue
				}
				label, err := util.GetAsString(v.Value)
				if err != nil {
					continue
				}
				m.Values = append(m.Values, football.OddValue{Value: strings.TrimSpace(label), Odd: *odd})
			}
			if len(m.Values) > 0 {
				b.Markets = append(b.Markets, m)
			}
		}
		if len(b.Markets) > 0 {
			out.Bookmakers = append(out.Bookmakers, b)
		}
	}
	return out
}
