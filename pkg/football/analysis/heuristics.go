package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/catalog"
	"github.com/richard-senior/betscout/pkg/football/form"
)

type side int

const (
	sideHome side = iota
	sideAway
)

func (s side) other() side {
	return 1 - s
}

var sides = [2]side{sideHome, sideAway}

// band is the magnitude of the structural difference. Several heuristics are damped as the
// tier gap grows so that form or venue cannot override it.
type band int

const (
	bandNarrow band = iota // |diff| <= 50
	bandWide               // 50 < |diff| <= 100
	bandVast               // |diff| > 100
)

func bandFor(diff float64) band {
	switch d := math.Abs(diff); {
	case d > 100:
		return bandVast
	case d > 50:
		return bandWide
	default:
		return bandNarrow
	}
}

var (
	damping        = [...]float64{bandNarrow: 1.0, bandWide: 0.6, bandVast: 0.3}
	homeFieldScale = [...]float64{bandNarrow: 1.0, bandWide: 0.7, bandVast: 0.4}
	// structural bonus caps per band, [home, away]
	structuralCap = [...][2]float64{bandNarrow: {25, 20}, bandWide: {40, 30}, bandVast: {60, 45}}
)

const (
	homeFieldBonus     = 8.0
	streakBonus        = 8.0
	strongAttackBonus  = 6.0
	tightDefenceBonus  = 5.0
	exploitBonus       = 5.0
	psychologyShift    = 5.0
	fatiguePenalty     = 3.0
	travelPenalty      = 3.0
	rivalryMotivation  = 3.0
	maxRatingBonus     = 8.0
	h2hWinBonus        = 4.0
	h2hWindow          = 5
	cardsFlagPerMatch  = 3.0
	fatigueMatchCount  = 40
	baseRating         = 1500.0
	ratingPointsPerNet = 15.0
)

// state is the running evaluation of one bundle
type state struct {
	b     *Bundle
	cat   *catalog.Catalog
	sa    football.StructuralAnalysis
	teams [2]football.Team
	forms [2]football.TeamForm
	stats [2]*football.TeamStats
	score [2]float64
	band  band

	goals   float64
	btts    float64
	corners *float64
	cards   *float64
	rivalry bool

	h2hPlayed int
	h2hWins   [2]int

	ins   football.Insights
	risks football.RiskFactors
}

// favour adds pts to the home side when d > 0 and to the away side when d < 0
func (s *state) favour(d, pts float64) {
	switch {
	case d > 0:
		s.score[sideHome] += pts
	case d < 0:
		s.score[sideAway] += pts
	}
}

func (s *state) name(sd side) string {
	return s.teams[sd].Name
}

func (s *state) prestige(sd side) catalog.Tier {
	return s.cat.Prestige(s.teams[sd].Name)
}

type heuristic struct {
	name  string
	apply func(s *state)
}

// heuristics run in order; each is independent and only adds to the running state
var heuristics = []heuristic{
	{"prestige", prestigeDifferential},
	{"structural", structuralBonus},
	{"form", recentForm},
	{"streak", winStreak},
	{"attack-defence", attackDefence},
	{"discipline", discipline},
	{"rivalry", rivalry},
	{"bench", benchStrength},
	{"home-field", homeField},
	{"psychology", psychology},
	{"competition", competition},
	{"fatigue-travel", fatigueTravel},
	{"meta-rating", metaRating},
	{"head-to-head", headToHead},
}

func prestigeDifferential(s *state) {
	d := s.prestige(sideHome).Bonus - s.prestige(sideAway).Bonus
	s.favour(d, math.Abs(d)*0.5)
	if d != 0 {
		sd := sideHome
		if d < 0 {
			sd = sideAway
		}
		s.ins.Context = append(s.ins.Context, fmt.Sprintf("%s (%s) carry a prestige edge of %.0f",
			s.name(sd), s.prestige(sd).Name, math.Abs(d)))
	}
}

func structuralBonus(s *state) {
	d := s.sa.Comparison.Difference
	if d == 0 {
		return
	}
	caps := structuralCap[s.band]
	if d > 0 {
		s.score[sideHome] += math.Min(caps[0], d*0.4)
	} else {
		s.score[sideAway] += math.Min(caps[1], -d*0.3)
	}
}

func recentForm(s *state) {
	for _, sd := range sides {
		s.ins.Form = append(s.ins.Form, formLine(s.teams[sd], s.forms[sd]))
	}
	h, a := s.forms[sideHome].WinRate, s.forms[sideAway].WinRate
	if h == nil || a == nil {
		return
	}
	d := *h - *a
	s.favour(d, math.Abs(d)*0.3*damping[s.band])
}

func formLine(t football.Team, f football.TeamForm) string {
	if !f.HasData() {
		return fmt.Sprintf("%s: no recent results available (limited data)", t.Name)
	}
	return fmt.Sprintf("%s: %s in the last %d (%dW %dD %dL, %.1f scored and %.1f conceded per game)",
		t.Name, f.Sequence, f.Matches, f.Wins, f.Draws, f.Losses, *f.AvgGoalsFor, *f.AvgGoalsAgainst)
}

func winStreak(s *state) {
	for _, sd := range sides {
		f := s.forms[sd]
		if f.Matches < 5 {
			continue
		}
		last := f.Sequence
		if len(last) > 5 {
			last = last[:5]
		}
		if w := strings.Count(last, string(football.Win)); w >= 4 {
			s.score[sd] += streakBonus
			s.ins.Form = append(s.ins.Form, fmt.Sprintf("%s have won %d of their last 5", s.name(sd), w))
		}
	}
}

func attackDefence(s *state) {
	for _, sd := range sides {
		f, opp := s.forms[sd], s.forms[sd.other()]
		if f.AvgGoalsFor != nil && *f.AvgGoalsFor > 2.0 {
			s.score[sd] += strongAttackBonus
			s.ins.Goals = append(s.ins.Goals, fmt.Sprintf("%s scoring %.1f per game", s.name(sd), *f.AvgGoalsFor))
		}
		if f.AvgGoalsAgainst != nil && *f.AvgGoalsAgainst < 0.8 {
			s.score[sd] += tightDefenceBonus
			s.ins.Goals = append(s.ins.Goals, fmt.Sprintf("%s conceding only %.1f per game", s.name(sd), *f.AvgGoalsAgainst))
		}
		if opp.AvgGoalsAgainst != nil && *opp.AvgGoalsAgainst > 1.5 {
			s.score[sd] += exploitBonus
			s.goals += 0.3
			s.ins.Goals = append(s.ins.Goals, fmt.Sprintf("%s can exploit %s's defence (%.1f conceded per game)",
				s.name(sd), s.name(sd.other()), *opp.AvgGoalsAgainst))
		}
	}
}

// matchAverages is a team's per-match corner and card averages over the fetched boxscores.
// own counts only the team's figures, total counts both sides of each match.
type matchAverages struct {
	samples      int
	ownCorners   *float64
	totalCorners *float64
	ownCards     *float64
	totalCards   *float64
}

func averagesFor(list []football.MatchStats, teamID int) matchAverages {
	var ownCorners, totalCorners, ownCards, totalCards []float64
	for _, m := range list {
		own, ok := m.For(teamID)
		if !ok {
			continue
		}
		opp, hasOpp := m.Against(teamID)
		if own.Corners != nil {
			ownCorners = append(ownCorners, float64(*own.Corners))
			if hasOpp && opp.Corners != nil {
				totalCorners = append(totalCorners, float64(*own.Corners+*opp.Corners))
			}
		}
		if c := own.Cards(); c != nil {
			ownCards = append(ownCards, float64(*c))
			if oc := opp.Cards(); hasOpp && oc != nil {
				totalCards = append(totalCards, float64(*c+*oc))
			}
		}
	}
	return matchAverages{
		samples:      len(list),
		ownCorners:   mean(ownCorners),
		totalCorners: mean(totalCorners),
		ownCards:     mean(ownCards),
		totalCards:   mean(totalCards),
	}
}

func mean(v []float64) *float64 {
	if len(v) == 0 {
		return nil
	}
	t := 0.0
	for _, x := range v {
		t += x
	}
	return football.FloatPtr(t / float64(len(v)))
}

// expected combines both teams' own averages, falling back to one team's match totals
func expected(h, a matchAverages, own func(matchAverages) *float64, total func(matchAverages) *float64) *float64 {
	ho, ao := own(h), own(a)
	if ho != nil && ao != nil {
		return football.FloatPtr(*ho + *ao)
	}
	if t := total(h); t != nil {
		return t
	}
	return total(a)
}

func discipline(s *state) {
	avg := [2]matchAverages{
		averagesFor(s.b.HomeMatchStats, s.teams[sideHome].ID),
		averagesFor(s.b.AwayMatchStats, s.teams[sideAway].ID),
	}
	s.corners = expected(avg[0], avg[1],
		func(m matchAverages) *float64 { return m.ownCorners },
		func(m matchAverages) *float64 { return m.totalCorners })
	s.cards = expected(avg[0], avg[1],
		func(m matchAverages) *float64 { return m.ownCards },
		func(m matchAverages) *float64 { return m.totalCards })

	if s.corners == nil && s.cards == nil {
		s.ins.Discipline = append(s.ins.Discipline, "No per-match statistics available: corners and cards not estimated (limited data)")
		return
	}
	for _, sd := range sides {
		m := avg[sd]
		if m.ownCorners == nil && m.ownCards == nil {
			continue
		}
		s.ins.Discipline = append(s.ins.Discipline, fmt.Sprintf("%s average %s corners and %s cards per match (last %d)",
			s.name(sd), fmtOpt(m.ownCorners), fmtOpt(m.ownCards), m.samples))
		if m.ownCards != nil && *m.ownCards > cardsFlagPerMatch {
			s.risks.High = append(s.risks.High, fmt.Sprintf("%s averaging %.1f cards per match", s.name(sd), *m.ownCards))
		}
	}
}

func fmtOpt(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

func rivalry(s *state) {
	if !s.rivalry {
		return
	}
	s.score[sideHome] += rivalryMotivation
	s.score[sideAway] += rivalryMotivation
	if s.cards != nil {
		s.cards = football.FloatPtr(*s.cards + 1.5)
	}
	s.goals -= 0.2
	s.ins.Context = append(s.ins.Context, fmt.Sprintf("Rivalry: %s vs %s", s.name(sideHome), s.name(sideAway)))
	s.risks.Medium = append(s.risks.Medium, "Derby fixture: form is a weaker guide and discipline suffers")
}

func benchStrength(s *state) {
	d := s.prestige(sideHome).Squad - s.prestige(sideAway).Squad
	s.favour(d, math.Abs(d)*0.2)
}

func homeField(s *state) {
	bonus := homeFieldBonus * homeFieldScale[s.band]
	s.score[sideHome] += bonus
	s.ins.Context = append(s.ins.Context, fmt.Sprintf("Home advantage for %s (+%.1f)", s.name(sideHome), bonus))
}

func psychology(s *state) {
	for _, sd := range sides {
		wr := s.forms[sd].WinRate
		if wr == nil {
			continue
		}
		switch {
		case *wr < 25:
			s.score[sd] -= psychologyShift
			s.ins.Context = append(s.ins.Context, fmt.Sprintf("%s short of confidence (%.0f%% wins)", s.name(sd), *wr))
		case *wr > 70:
			s.score[sd] += psychologyShift
			s.ins.Context = append(s.ins.Context, fmt.Sprintf("%s riding high (%.0f%% wins)", s.name(sd), *wr))
		}
	}
}

func competition(s *state) {
	l := s.b.Fixture.League
	switch {
	case s.cat.IsFriendly(l):
		s.goals += 0.4
		s.ins.Context = append(s.ins.Context, "Friendly: expect rotation and an open game")
		s.risks.Low = append(s.risks.Low, "Friendly: low stakes")
	case s.cat.IsKnockout(l):
		s.goals -= 0.3
		s.ins.Context = append(s.ins.Context, fmt.Sprintf("Knockout tie in %s: expect caution", l.Name))
	}
	if s.cat.IsCrucial(l) {
		s.goals += 0.2
		s.ins.Context = append(s.ins.Context, fmt.Sprintf("High-stakes round: %s", l.Round))
	}
}

func fatigueTravel(s *state) {
	for _, sd := range sides {
		if st := s.stats[sd]; st != nil && st.Played >= fatigueMatchCount {
			s.score[sd] -= fatiguePenalty
			s.ins.Context = append(s.ins.Context, fmt.Sprintf("%s have played %d matches this season", s.name(sd), st.Played))
		}
	}
	h, a := s.teams[sideHome].Country, s.teams[sideAway].Country
	if h != "" && a != "" && !strings.EqualFold(h, a) {
		s.score[sideAway] -= travelPenalty
		s.ins.Context = append(s.ins.Context, fmt.Sprintf("%s travelling from %s", s.name(sideAway), a))
	}
}

func rating(st *football.TeamStats) float64 {
	return baseRating + float64(st.Wins-st.Losses)*ratingPointsPerNet
}

func metaRating(s *state) {
	for _, sd := range sides {
		f := s.forms[sd]
		if f.Unbeaten() && f.Matches >= 5 {
			s.risks.Medium = append(s.risks.Medium, fmt.Sprintf("%s unbeaten in their last %d", s.name(sd), f.Matches))
		}
	}
	h, a := s.stats[sideHome], s.stats[sideAway]
	if h == nil || a == nil {
		return
	}
	d := rating(h) - rating(a)
	s.favour(d, math.Min(maxRatingBonus, math.Abs(d)/25))
	s.ins.Context = append(s.ins.Context, fmt.Sprintf("Season rating %s %.0f vs %s %.0f",
		s.name(sideHome), rating(h), s.name(sideAway), rating(a)))
}

func headToHead(s *state) {
	if s.b.HeadToHead == nil {
		s.ins.HeadToHead = append(s.ins.HeadToHead, "Insufficient head-to-head history: meetings could not be retrieved")
		return
	}
	played := form.Last(s.b.HeadToHead, h2hWindow)
	if len(played) == 0 {
		s.ins.HeadToHead = append(s.ins.HeadToHead,
			fmt.Sprintf("Insufficient head-to-head history: no previous meetings between %s and %s", s.name(sideHome), s.name(sideAway)))
		return
	}

	homeID := s.teams[sideHome].ID
	goals, both, draws := 0, 0, 0
	for _, m := range played {
		hg, ag := *m.Goals.Home, *m.Goals.Away
		goals += hg + ag
		if hg > 0 && ag > 0 {
			both++
		}
		switch r, _ := m.ResultFor(homeID); r {
		case football.Win:
			s.h2hWins[sideHome]++
		case football.Loss:
			s.h2hWins[sideAway]++
		default:
			draws++
		}
	}
	n := float64(len(played))
	s.h2hPlayed = len(played)
	avgGoals := float64(goals) / n
	bothRate := float64(both) / n * 100

	d := float64(s.h2hWins[sideHome] - s.h2hWins[sideAway])
	s.favour(d, math.Abs(d)*h2hWinBonus*damping[s.band])
	if bothRate > 70 {
		s.btts += 15
	}
	s.goals = 0.7*s.goals + 0.3*avgGoals

	s.ins.HeadToHead = append(s.ins.HeadToHead,
		fmt.Sprintf("Last %d meetings: %s %d, draws %d, %s %d",
			len(played), s.name(sideHome), s.h2hWins[sideHome], draws, s.name(sideAway), s.h2hWins[sideAway]),
		fmt.Sprintf("%.1f goals per meeting, both sides scored in %.0f%%", avgGoals, bothRate))
}

// baselineGoals is the starting total-goals expectation before adjustments
func baselineGoals(h, a football.TeamForm) float64 {
	if h.HasData() && a.HasData() {
		return (*h.AvgGoalsFor+*a.AvgGoalsAgainst)/2 + (*a.AvgGoalsFor+*h.AvgGoalsAgainst)/2
	}
	if t := h.AvgTotalGoals(); t != nil {
		return *t
	}
	if t := a.AvgTotalGoals(); t != nil {
		return *t
	}
	return DefaultGoals
}

func baselineBTTS(h, a football.TeamForm) float64 {
	hr, ar := h.BothScoredRate(), a.BothScoredRate()
	switch {
	case hr != nil && ar != nil:
		return (*hr + *ar) / 2
	case hr != nil:
		return *hr
	case ar != nil:
		return *ar
	}
	return DefaultBTTS
}
