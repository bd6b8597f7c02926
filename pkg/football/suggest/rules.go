package suggest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
)

// rule is one suggestion descriptor. when is the threshold predicate; confidence, reason and
// criteria are only called when it holds.
type rule struct {
	id         string
	category   football.BetCategory
	market     string // odds market tag
	side       side   // whose strength feeds the composite risk
	selection  func(f *facts) string
	when       func(f *facts) bool
	confidence func(f *facts) float64
	reason     func(f *facts) string
	criteria   func(f *facts) []string
	handicap   *float64
	// player markets only take an odd quoted for the named player
	exactOdd bool
}

// sideID prefixes a rule id with "home-" or "away-"
func sideID(s side, suffix string) string {
	return strings.ToLower(sideLabel(s)) + "-" + suffix
}

func fixed(s string) func(*facts) string {
	return func(*facts) string { return s }
}

func sideLabel(s side) string {
	if s == awaySide {
		return "Away"
	}
	return "Home"
}

// rules is the ordered table of fixture level markets
var rules = buildRules()

func buildRules() []rule {
	r := []rule{
		/////////////////////////////////////////////////////////////////////
		// total goals
		{
			id: "goals-over-1.5", category: football.CategoryGoals, market: "Goals Over/Under",
			selection: fixed("Over 1.5"),
			when:      func(f *facts) bool { return f.goals >= 2.3 },
			confidence: func(f *facts) float64 {
				return clamp(OverLine(f.goals, 1.5)*100, 50, 92)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("%.2f goals expected; a Poisson model gives %.0f%% for two or more",
					f.goals, OverLine(f.goals, 1.5)*100)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected goals %.2f >= 2.30", f.goals)}
			},
		},
		{
			id: "goals-over-2.5", category: football.CategoryGoals, market: "Goals Over/Under",
			selection: fixed("Over 2.5"),
			when:      func(f *facts) bool { return f.goals >= OpenGameGoals },
			confidence: func(f *facts) float64 {
				return clamp(OverLine(f.goals, 2.5)*100+(f.btts-50)*0.2, 45, 85)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Open game projected at %.2f goals with BTTS at %.0f%%", f.goals, f.btts)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected goals %.2f >= %.2f", f.goals, OpenGameGoals)}
			},
		},
		{
			id: "goals-under-2.5", category: football.CategoryGoals, market: "Goals Over/Under",
			selection: fixed("Under 2.5"),
			when:      func(f *facts) bool { return f.goals <= 2.2 },
			confidence: func(f *facts) float64 {
				return clamp(UnderLine(f.goals, 2.5)*100, 45, 85)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Tight game projected at %.2f goals; %.0f%% chance of two or fewer",
					f.goals, UnderLine(f.goals, 2.5)*100)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected goals %.2f <= 2.20", f.goals)}
			},
		},
		{
			id: "goals-under-3.5", category: football.CategoryGoals, market: "Goals Over/Under",
			selection: fixed("Under 3.5"),
			when:      func(f *facts) bool { return f.goals <= SafeUnderGoals },
			confidence: func(f *facts) float64 {
				return clamp(UnderLine(f.goals, 3.5)*100, 50, 90)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Only %.2f goals expected, four or more would be an outlier", f.goals)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected goals %.2f <= %.2f", f.goals, SafeUnderGoals)}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// both teams to score
		{
			id: "btts-yes", category: football.CategoryGoals, market: "Both Teams Score",
			selection: fixed("Yes"),
			when:      func(f *facts) bool { return f.btts >= 58 },
			confidence: func(f *facts) float64 {
				c := f.btts
				h, a := f.in.HomeForm.BothScoredRate(), f.in.AwayForm.BothScoredRate()
				if h != nil && a != nil && (*h+*a)/2 > 60 {
					c += 5
				}
				return clamp(c, 50, 85)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Both teams to score rated %.0f%% with %.2f goals expected", f.btts, f.goals)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("btts %.0f%% >= 58%%", f.btts)}
			},
		},
		{
			id: "btts-no", category: football.CategoryGoals, market: "Both Teams Score",
			selection: fixed("No"),
			when:      func(f *facts) bool { return f.btts <= 42 },
			confidence: func(f *facts) float64 {
				return clamp(100-f.btts, 50, 85)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Both teams to score only %.0f%%: one side is likely to blank", f.btts)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("btts %.0f%% <= 42%%", f.btts)}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// strict draw
		{
			id: "draw", category: football.CategoryOutcome, market: "Match Winner",
			selection: fixed("Draw"),
			when:      strictDraw,
			confidence: func(f *facts) float64 {
				wrGap := math.Abs(val(f.in.HomeForm.WinRate) - val(f.in.AwayForm.WinRate))
				return clamp(48+(8-f.gap)+(15-wrGap)/3, 45, 62)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Evenly matched: %.0f%% v %.0f%% overall, win rates %.0f%% v %.0f%%, scoring %.2f v %.2f per game",
					f.homeScore, f.awayScore, val(f.in.HomeForm.WinRate), val(f.in.AwayForm.WinRate),
					val(f.in.HomeForm.AvgGoalsFor), val(f.in.AwayForm.AvgGoalsFor))
			},
			criteria: func(f *facts) []string {
				return []string{
					fmt.Sprintf("score gap %.1f <= 8", f.gap),
					"win rate gap <= 15 with both sides between 25% and 60%",
					"attack rates within 0.4 goals",
				}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// first half
		{
			id: "first-half-over-0.5", category: football.CategoryFirstHalf, market: "Goals Over/Under First Half",
			selection: fixed("Over 0.5"),
			when:      func(f *facts) bool { return f.firstHalf != nil && *f.firstHalf >= 1.2 },
			confidence: func(f *facts) float64 {
				return clamp(OverLine(*f.firstHalf, 0.5)*100, 50, 88)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Recent matches average %.2f first-half goals", *f.firstHalf)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("first-half goals %.2f >= 1.20", *f.firstHalf)}
			},
		},
		{
			id: "first-half-draw", category: football.CategoryFirstHalf, market: "First Half Winner",
			selection: fixed("Draw"),
			when: func(f *facts) bool {
				return f.firstHalf != nil && *f.firstHalf <= 0.9 && f.gap <= 12
			},
			confidence: func(f *facts) float64 {
				return clamp(45+(1.0-*f.firstHalf)*30+(12-f.gap)/2, 45, 65)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Slow starters (%.2f first-half goals) and only %.0f points between the sides",
					*f.firstHalf, f.gap)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("first-half goals %.2f <= 0.90", *f.firstHalf), fmt.Sprintf("score gap %.1f <= 12", f.gap)}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// second half
		{
			id: "second-half-highest", category: football.CategorySecondHalf, market: "Highest Scoring Half",
			selection: fixed("2nd Half"),
			when: func(f *facts) bool {
				return f.firstHalf != nil && f.secondHalf != nil &&
					*f.secondHalf >= 1.3 && *f.secondHalf >= *f.firstHalf*1.25
			},
			confidence: func(f *facts) float64 {
				if *f.firstHalf == 0 {
					return 72
				}
				return clamp(50+(*f.secondHalf / *f.firstHalf-1)*25, 50, 72)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Goals come late: %.2f after the break against %.2f before it",
					*f.secondHalf, *f.firstHalf)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("second-half goals %.2f >= 1.25 x first-half %.2f", *f.secondHalf, *f.firstHalf)}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// corners
		{
			id: "corners-over-9.5", category: football.CategoryCorners, market: "Corners Over Under",
			selection: fixed("Over 9.5"),
			when:      func(f *facts) bool { return f.corners != nil && *f.corners >= 10.5 },
			confidence: func(f *facts) float64 {
				return clamp(55+(*f.corners-10.5)*8, 50, 82)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("The two sides' recent matches average %.1f corners", *f.corners)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected corners %.1f >= 10.5", *f.corners)}
			},
		},
		{
			id: "corners-under-10.5", category: football.CategoryCorners, market: "Corners Over Under",
			selection: fixed("Under 10.5"),
			when:      func(f *facts) bool { return f.corners != nil && *f.corners <= 8.5 },
			confidence: func(f *facts) float64 {
				return clamp(55+(8.5-*f.corners)*8, 50, 82)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Low corner volume, %.1f per match recently", *f.corners)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected corners %.1f <= 8.5", *f.corners)}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// cards
		{
			id: "cards-over-3.5", category: football.CategoryCards, market: "Cards Over/Under",
			selection: fixed("Over 3.5"),
			when:      func(f *facts) bool { return f.cards != nil && *f.cards >= 4.5 },
			confidence: func(f *facts) float64 {
				c := 55 + (*f.cards-4.5)*8
				if f.rivalry {
					c += 5
				}
				return clamp(c, 50, 82)
			},
			reason: func(f *facts) string {
				s := fmt.Sprintf("%.1f cards expected", *f.cards)
				if f.rivalry {
					s += " in a derby"
				}
				return s
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected cards %.1f >= 4.5", *f.cards)}
			},
		},
		{
			id: "cards-under-4.5", category: football.CategoryCards, market: "Cards Over/Under",
			selection: fixed("Under 4.5"),
			when:      func(f *facts) bool { return f.cards != nil && *f.cards <= 3 && !f.rivalry },
			confidence: func(f *facts) float64 {
				return clamp(55+(3-*f.cards)*8, 50, 80)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("Disciplined sides, %.1f cards per match recently", *f.cards)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("expected cards %.1f <= 3.0", *f.cards), "not a derby"}
			},
		},

		/////////////////////////////////////////////////////////////////////
		// composites
		{
			id: "btts-and-over-2.5", category: football.CategorySpecial, market: "Total Goals/Both Teams To Score",
			selection: fixed("Yes/Over 2.5"),
			when:      func(f *facts) bool { return f.btts >= 60 && f.goals >= 2.9 },
			confidence: func(f *facts) float64 {
				return clamp((f.btts+OverLine(f.goals, 2.5)*100)/2*0.85, 40, 75)
			},
			reason: func(f *facts) string {
				return fmt.Sprintf("BTTS %.0f%% and %.2f goals expected point to an open, end-to-end game", f.btts, f.goals)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("btts %.0f%% >= 60%%", f.btts), fmt.Sprintf("expected goals %.2f >= 2.90", f.goals)}
			},
		},
	}

	for _, s := range []side{homeSide, awaySide} {
		r = append(r, winRule(s), doubleChanceRule(s), handicapRule(s), teamGoalsRule(s),
			resultAndGoalsRule(s), winToNilRule(s))
	}
	return r
}

func strictDraw(f *facts) bool {
	hw, aw := f.in.HomeForm.WinRate, f.in.AwayForm.WinRate
	hg, ag := f.in.HomeForm.AvgGoalsFor, f.in.AwayForm.AvgGoalsFor
	if hw == nil || aw == nil || hg == nil || ag == nil {
		return false
	}
	mid := func(v float64) bool { return v >= 25 && v <= 60 }
	return f.gap <= 8 &&
		math.Abs(*hw-*aw) <= 15 &&
		mid(*hw) && mid(*aw) &&
		math.Abs(*hg-*ag) <= 0.4
}

/////////////////////////////////////////////////////////////////////////
////// Side specific rules
/////////////////////////////////////////////////////////////////////////

func winRule(s side) rule {
	return rule{
		id: sideID(s, "win"), category: football.CategoryOutcome,
		market: "Match Winner", side: s,
		selection: fixed(sideLabel(s)),
		when: func(f *facts) bool {
			return f.favourite == s && f.gap >= 15 && f.score(s) >= 55
		},
		confidence: func(f *facts) float64 {
			return clamp(f.score(s)+f.gap*0.3, 50, 90)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s rated %.0f%% against %.0f%%, a %.0f point gap",
				f.team(s).Name, f.score(s), f.score(other(s)), f.gap)
		},
		criteria: func(f *facts) []string {
			return []string{fmt.Sprintf("score gap %.1f >= 15", f.gap), fmt.Sprintf("%s score %.0f >= 55", sideLabel(s), f.score(s))}
		},
	}
}

func doubleChanceRule(s side) rule {
	sel := "Home/Draw"
	if s == awaySide {
		sel = "Draw/Away"
	}
	return rule{
		id: sideID(s, "double-chance"), category: football.CategoryOutcome,
		market: "Double Chance", side: s,
		selection: fixed(sel),
		when: func(f *facts) bool {
			return f.favourite == s && f.gap >= 8
		},
		confidence: func(f *facts) float64 {
			return clamp(f.score(s)+25, 55, 90)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s are %.0f points better rated; the draw adds cover", f.team(s).Name, f.gap)
		},
		criteria: func(f *facts) []string {
			return []string{fmt.Sprintf("%s favourite by %.1f >= 8", sideLabel(s), f.gap)}
		},
	}
}

func handicapRule(s side) rule {
	h := -1.5
	return rule{
		id: sideID(s, "handicap-1.5"), category: football.CategoryHandicap,
		market: "Asian Handicap", side: s, handicap: &h,
		selection: fixed(sideLabel(s) + " -1.5"),
		when: func(f *facts) bool {
			own, opp := f.form(s), f.form(other(s))
			return f.favourite == s && f.gap >= 30 &&
				own.AvgGoalsFor != nil && *own.AvgGoalsFor >= 1.8 &&
				opp.AvgGoalsAgainst != nil && *opp.AvgGoalsAgainst >= 1.3
		},
		confidence: func(f *facts) float64 {
			return clamp(40+f.gap*0.5, 45, 75)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s score %.2f a game and %s concede %.2f; a two goal margin is realistic",
				f.team(s).Name, *f.form(s).AvgGoalsFor, f.team(other(s)).Name, *f.form(other(s)).AvgGoalsAgainst)
		},
		criteria: func(f *facts) []string {
			return []string{fmt.Sprintf("score gap %.1f >= 30", f.gap), "attack >= 1.8 against defence conceding >= 1.3"}
		},
	}
}

func teamGoalsRule(s side) rule {
	cat, market := football.CategoryHomeGoals, "Total - Home"
	if s == awaySide {
		cat, market = football.CategoryAwayGoals, "Total - Away"
	}
	lambda := func(f *facts) float64 {
		return (*f.form(s).AvgGoalsFor + *f.form(other(s)).AvgGoalsAgainst) / 2
	}
	return rule{
		id: sideID(s, "goals-over-1.5"), category: cat,
		market: market, side: s,
		selection: fixed("Over 1.5"),
		when: func(f *facts) bool {
			own, opp := f.form(s), f.form(other(s))
			return own.AvgGoalsFor != nil && *own.AvgGoalsFor >= 1.8 &&
				opp.AvgGoalsAgainst != nil && *opp.AvgGoalsAgainst >= 1.3
		},
		confidence: func(f *facts) float64 {
			return clamp(OverLine(lambda(f), 1.5)*100+5, 45, 85)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s average %.2f goals and face a defence conceding %.2f",
				f.team(s).Name, *f.form(s).AvgGoalsFor, *f.form(other(s)).AvgGoalsAgainst)
		},
		criteria: func(f *facts) []string {
			return []string{
				fmt.Sprintf("%s scoring %.2f >= 1.8", sideLabel(s), *f.form(s).AvgGoalsFor),
				fmt.Sprintf("opponent conceding %.2f >= 1.3", *f.form(other(s)).AvgGoalsAgainst),
			}
		},
	}
}

func resultAndGoalsRule(s side) rule {
	return rule{
		id: sideID(s, "win-and-over-1.5"), category: football.CategorySpecial,
		market: "Result/Total Goals", side: s,
		selection: fixed(sideLabel(s) + "/Over 1.5"),
		when: func(f *facts) bool {
			return f.favourite == s && f.score(s) >= 60 && f.goals >= 2.5
		},
		confidence: func(f *facts) float64 {
			return clamp(math.Min(f.score(s), OverLine(f.goals, 1.5)*100)*0.85, 40, 80)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s favoured at %.0f%% in a game projected for %.2f goals", f.team(s).Name, f.score(s), f.goals)
		},
		criteria: func(f *facts) []string {
			return []string{fmt.Sprintf("%s score %.0f >= 60", sideLabel(s), f.score(s)), fmt.Sprintf("expected goals %.2f >= 2.50", f.goals)}
		},
	}
}

func winToNilRule(s side) rule {
	csRate := func(f *facts) float64 {
		fm := f.form(s)
		return val(rate(fm.CleanSheets, fm.Matches))
	}
	ftsRate := func(f *facts) float64 {
		fm := f.form(other(s))
		return val(rate(fm.FailedToScore, fm.Matches))
	}
	return rule{
		id: sideID(s, "win-to-nil"), category: football.CategorySpecial,
		market: "Win to Nil", side: s,
		selection: fixed(sideLabel(s)),
		when: func(f *facts) bool {
			return f.favourite == s && f.score(s) >= 60 &&
				f.form(s).HasData() && f.form(other(s)).HasData() &&
				csRate(f) >= 40 && ftsRate(f) >= 30
		},
		confidence: func(f *facts) float64 {
			return clamp(35+csRate(f)*0.3+ftsRate(f)*0.2+f.gap*0.2, 40, 72)
		},
		reason: func(f *facts) string {
			return fmt.Sprintf("%s kept clean sheets in %.0f%% of recent games; %s failed to score in %.0f%%",
				f.team(s).Name, csRate(f), f.team(other(s)).Name, ftsRate(f))
		},
		criteria: func(f *facts) []string {
			return []string{
				fmt.Sprintf("clean sheet rate %.0f%% >= 40%%", csRate(f)),
				fmt.Sprintf("opponent blank rate %.0f%% >= 30%%", ftsRate(f)),
			}
		},
	}
}

/////////////////////////////////////////////////////////////////////////
////// Player markets
/////////////////////////////////////////////////////////////////////////

// playerRule is a rule evaluated once per candidate player
type playerRule struct {
	rule
	candidates func(f *facts) []football.PlayerSeason
}

const playersPerTeam = 2

var playerRules = []playerRule{
	{
		rule: rule{
			id: "anytime-scorer", category: football.CategoryPlayer, market: "Anytime Goal Scorer", exactOdd: true,
			selection: func(f *facts) string { return f.player.Name },
			when:      func(f *facts) bool { return true },
			confidence: func(f *facts) float64 {
				c := 25 + val(f.player.GoalsPerAppearance())*60
				if fm := f.form(f.playerSide()); fm.AvgGoalsFor != nil && *fm.AvgGoalsFor >= 2 {
					c += 5
				}
				return clamp(c, 40, 75)
			},
			reason: func(f *facts) string {
				p := f.player
				s := fmt.Sprintf("%s has %d goals in %d appearances (%.2f per game)",
					p.Name, p.Goals, p.Appearances, val(p.GoalsPerAppearance()))
				if p.Rank > 0 {
					s += fmt.Sprintf(", ranked %d among the league's scorers", p.Rank)
				}
				return s
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("goals per appearance %.2f", val(f.player.GoalsPerAppearance()))}
			},
		},
		candidates: scorers,
	},
	{
		rule: rule{
			id: "player-booked", category: football.CategoryPlayer, market: "Player to be Booked", exactOdd: true,
			selection: func(f *facts) string { return f.player.Name },
			when:      func(f *facts) bool { return true },
			confidence: func(f *facts) float64 {
				c := 35 + val(f.player.CardsPerAppearance())*70
				if f.rivalry {
					c += 5
				}
				return clamp(c, 40, 72)
			},
			reason: func(f *facts) string {
				p := f.player
				return fmt.Sprintf("%s has %d yellow and %d red cards in %d appearances",
					p.Name, p.YellowCards, p.RedCards, p.Appearances)
			},
			criteria: func(f *facts) []string {
				return []string{fmt.Sprintf("cards per appearance %.2f >= 0.30", val(f.player.CardsPerAppearance()))}
			},
		},
		candidates: bookable,
	},
}

func (f *facts) playerSide() side {
	if f.player != nil && f.player.TeamID == f.in.Fixture.Away.ID {
		return awaySide
	}
	return homeSide
}

// scorers are league top scorers playing for either side, topped up from the squads
func scorers(f *facts) []football.PlayerSeason {
	seen := map[int]bool{}
	var pool []football.PlayerSeason
	add := func(p football.PlayerSeason, minRate float64) {
		if seen[p.PlayerID] || !f.in.Fixture.Involves(p.TeamID) || p.Appearances < 5 {
			return
		}
		if val(p.GoalsPerAppearance()) < minRate {
			return
		}
		seen[p.PlayerID] = true
		pool = append(pool, p)
	}
	for _, p := range f.in.TopScorers {
		add(p, 0.4)
	}
	for _, p := range f.in.HomeSquad {
		add(p, 0.5)
	}
	for _, p := range f.in.AwaySquad {
		add(p, 0.5)
	}
	return topPerTeam(pool, func(p football.PlayerSeason) float64 { return val(p.GoalsPerAppearance()) })
}

func bookable(f *facts) []football.PlayerSeason {
	var pool []football.PlayerSeason
	for _, squad := range [][]football.PlayerSeason{f.in.HomeSquad, f.in.AwaySquad} {
		for _, p := range squad {
			if p.Appearances >= 5 && val(p.CardsPerAppearance()) >= 0.3 {
				pool = append(pool, p)
			}
		}
	}
	return topPerTeam(pool, func(p football.PlayerSeason) float64 { return val(p.CardsPerAppearance()) })
}

func topPerTeam(pool []football.PlayerSeason, key func(football.PlayerSeason) float64) []football.PlayerSeason {
	sort.SliceStable(pool, func(i, j int) bool { return key(pool[i]) > key(pool[j]) })
	count := map[int]int{}
	var out []football.PlayerSeason
	for _, p := range pool {
		if count[p.TeamID] >= playersPerTeam {
			continue
		}
		count[p.TeamID]++
		out = append(out, p)
	}
	return out
}
