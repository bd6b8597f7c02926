package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/suggest"
)

const (
	DefaultGoals = 2.5
	DefaultBTTS  = 50.0

	MinGoals = 1.5
	MaxGoals = 4.5
	MinBTTS  = 20.0
	MaxBTTS  = 80.0

	MinConfidence = 45.0
	MaxConfidence = 88.0
	// FallbackConfidence is reported when nothing could be evaluated
	FallbackConfidence = 40.0

	MinScore = 5.0
	MaxScore = 95.0

	structuralWeight  = 0.6
	traditionalWeight = 0.4
)

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// StructuralSplit maps a structural difference (home - away FFS) onto a home/away percentage pair
func StructuralSplit(diff float64) football.Split {
	d := math.Abs(diff)
	var strong float64
	switch {
	case d > 150:
		strong = 85
	case d > 100:
		strong = 78
	case d > 50:
		strong = 68
	case d > 20:
		strong = 50 + d/100*20
	default:
		return football.Split{Home: 50, Away: 50}
	}
	if diff < 0 {
		return football.Split{Home: 100 - strong, Away: strong}
	}
	return football.Split{Home: strong, Away: 100 - strong}
}

// TraditionalSplit normalises the running heuristic scores so they sum to 100
func TraditionalSplit(home, away float64) football.Split {
	home, away = math.Max(home, 1), math.Max(away, 1)
	total := home + away
	return football.Split{Home: home / total * 100, Away: away / total * 100}
}

// Blend weights the structural and traditional splits per side and clamps each independently.
// The result is not renormalised: the two sides need not sum to 100.
func Blend(structuralSplit, traditional football.Split) football.Split {
	return football.Split{
		Home: clamp(structuralWeight*structuralSplit.Home+traditionalWeight*traditional.Home, MinScore, MaxScore),
		Away: clamp(structuralWeight*structuralSplit.Away+traditionalWeight*traditional.Away, MinScore, MaxScore),
	}
}

// Confidence rates evidence quality only: how much season, head-to-head and recent data there
// is and how evenly it is spread between the teams
func Confidence(homeStats, awayStats *football.TeamStats, h2hMeetings int, home, away football.TeamForm) float64 {
	played := func(s *football.TeamStats) int {
		if s == nil {
			return 0
		}
		return s.Played
	}
	hp, ap := float64(played(homeStats)), float64(played(awayStats))

	c := 60.0
	c += math.Min(20, (hp+ap)/2)
	c += math.Min(8, float64(h2hMeetings)*2)
	c += math.Min(7, float64(home.Matches+away.Matches)/2*0.7)
	c -= math.Min(5, math.Abs(hp-ap)/2)

	if homeStats == nil {
		c -= 5
	}
	if awayStats == nil {
		c -= 5
	}
	if h2hMeetings == 0 {
		c -= 3
	}
	if !home.HasData() {
		c -= 4
	}
	if !away.HasData() {
		c -= 4
	}
	return clamp(c, MinConfidence, MaxConfidence)
}

func (s *state) finish() *football.GameAnalysis {
	s.goals = clamp(s.goals, MinGoals, MaxGoals)
	s.btts = clamp(s.btts, MinBTTS, MaxBTTS)

	traditional := TraditionalSplit(s.score[sideHome], s.score[sideAway])
	structuralSplit := StructuralSplit(s.sa.Comparison.Difference)
	blended := Blend(structuralSplit, traditional)

	sa := s.sa
	a := &football.GameAnalysis{
		FixtureID:          s.b.Fixture.ID,
		HomeTeam:           s.name(sideHome),
		AwayTeam:           s.name(sideAway),
		HomeScore:          round1(blended.Home),
		AwayScore:          round1(blended.Away),
		Traditional:        football.Split{Home: round1(traditional.Home), Away: round1(traditional.Away)},
		StructuralSplit:    structuralSplit,
		TotalGoalsExpected: round1(s.goals),
		BothTeamsToScore:   math.Round(s.btts),
		Confidence:         math.Round(Confidence(s.stats[sideHome], s.stats[sideAway], s.h2hPlayed, s.forms[sideHome], s.forms[sideAway])),
		Structural:         &sa,
		GeneratedAt:        time.Now().UTC(),
	}
	if s.corners != nil {
		a.ExpectedCorners = football.FloatPtr(round1(*s.corners))
	}
	if s.cards != nil {
		a.ExpectedCards = football.FloatPtr(round1(*s.cards))
	}

	for _, sd := range sides {
		if s.stats[sd] == nil {
			s.ins.Context = append(s.ins.Context, fmt.Sprintf("Season statistics unavailable for %s (limited data)", s.name(sd)))
		}
	}
	if a.Confidence < 55 {
		s.risks.High = append(s.risks.High, fmt.Sprintf("Limited data: confidence only %.0f%%", a.Confidence))
	}
	s.ins.Goals = append(s.ins.Goals, fmt.Sprintf("Expected goals %.1f, both teams to score %.0f%%", a.TotalGoalsExpected, a.BothTeamsToScore))
	s.ins.Structural = sa.Comparison.Insights
	s.ins.Main = s.mainInsights(a)

	a.Insights = s.ins
	a.RiskFactors = s.risks
	a.KeyPredictions = s.keyPredictions(a)
	return a
}

// mainInsights are always four lines in fixed order: favourite, goal environment, form gap,
// decisive factor
func (s *state) mainInsights(a *football.GameAnalysis) []string {
	fav, gap := a.Favourite()
	out := make([]string, 0, 4)

	if gap <= 15 {
		out = append(out, fmt.Sprintf("Balanced contest: %s %.0f%% v %s %.0f%%", a.HomeTeam, a.HomeScore, a.AwayTeam, a.AwayScore))
	} else {
		out = append(out, fmt.Sprintf("%s favourites by %.0f points (%.0f%% v %.0f%%)", fav, gap, a.HomeScore, a.AwayScore))
	}

	switch g := a.TotalGoalsExpected; {
	case g >= suggest.OpenGameGoals:
		out = append(out, fmt.Sprintf("Offensive game expected: %.1f goals", g))
	case g < 2.2:
		out = append(out, fmt.Sprintf("Defensive game expected: %.1f goals", g))
	default:
		out = append(out, fmt.Sprintf("Balanced goal environment: %.1f goals", g))
	}

	h, aw := s.forms[sideHome].WinRate, s.forms[sideAway].WinRate
	switch {
	case h == nil || aw == nil:
		out = append(out, "Form comparison incomplete (limited data)")
	case math.Abs(*h-*aw) > 30:
		better := sideHome
		if *aw > *h {
			better = sideAway
		}
		out = append(out, fmt.Sprintf("Form gap of %.0f points in favour of %s", math.Abs(*h-*aw), s.name(better)))
	default:
		out = append(out, fmt.Sprintf("Comparable recent form (gap %.0f points)", math.Abs(*h-*aw)))
	}

	out = append(out, s.decisiveFactor(a, gap))
	return out
}

func (s *state) decisiveFactor(a *football.GameAnalysis, gap float64) string {
	if d := s.prestige(sideHome).Bonus - s.prestige(sideAway).Bonus; math.Abs(d) > 15 {
		sd := sideHome
		if d < 0 {
			sd = sideAway
		}
		return fmt.Sprintf("Decisive factor: club prestige of %s", s.name(sd))
	}
	if s.rivalry {
		return "Decisive factor: derby intensity"
	}
	best, bestAvg := sideHome, -1.0
	for _, sd := range sides {
		if v := s.forms[sd].AvgGoalsFor; v != nil && *v > bestAvg {
			best, bestAvg = sd, *v
		}
	}
	if bestAvg > 2.5 {
		return fmt.Sprintf("Decisive factor: %s attack (%.1f goals per game)", s.name(best), bestAvg)
	}
	if gap <= 15 {
		return "No single decisive factor"
	}
	if a.HomeScore >= a.AwayScore {
		return fmt.Sprintf("Decisive factor: home advantage for %s", a.HomeTeam)
	}
	return fmt.Sprintf("Decisive factor: %s strong enough to overcome home advantage", a.AwayTeam)
}

func (s *state) keyPredictions(a *football.GameAnalysis) football.KeyPredictions {
	fav, gap := a.Favourite()
	underdog, ud := a.AwayTeam, sideAway
	if a.AwayScore > a.HomeScore {
		underdog, ud = a.HomeTeam, sideHome
	}

	var kp football.KeyPredictions
	if gap <= 10 {
		kp.MostLikely = "Balanced: a draw or a narrow margin either way"
	} else {
		kp.MostLikely = fmt.Sprintf("%s win", fav)
	}

	wr := s.forms[ud].WinRate
	switch {
	case gap <= 10:
		kp.SurpriseFactor = "A decisive margin for either side"
	case wr != nil && *wr >= 50:
		kp.SurpriseFactor = fmt.Sprintf("%s in good form (%.0f%% wins) could upset the odds", underdog, *wr)
	case s.h2hWins[ud] > 0:
		kp.SurpriseFactor = fmt.Sprintf("%s have won %d of the last %d meetings", underdog, s.h2hWins[ud], s.h2hPlayed)
	case a.BothTeamsToScore >= 55:
		kp.SurpriseFactor = fmt.Sprintf("%s likely to find a goal (both teams to score %.0f%%)", underdog, a.BothTeamsToScore)
	default:
		kp.SurpriseFactor = fmt.Sprintf("Little suggests an upset by %s", underdog)
	}

	switch {
	case gap > 20:
		kp.SafetyBet = fmt.Sprintf("Double chance: %s or draw", fav)
	case a.TotalGoalsExpected > suggest.SafeUnderGoals:
		kp.SafetyBet = "Over 1.5 goals"
	default:
		kp.SafetyBet = "Under 3.5 goals"
	}
	return kp
}

// Fallback is the fixed, clearly labelled analysis returned when evaluation cannot complete
func Fallback(f football.Fixture) *football.GameAnalysis {
	home, away := f.Home.Name, f.Away.Name
	if home == "" {
		home = "Home"
	}
	if away == "" {
		away = "Away"
	}
	return &football.GameAnalysis{
		FixtureID:          f.ID,
		HomeTeam:           home,
		AwayTeam:           away,
		HomeScore:          50,
		AwayScore:          50,
		Traditional:        football.Split{Home: 50, Away: 50},
		StructuralSplit:    football.Split{Home: 50, Away: 50},
		TotalGoalsExpected: DefaultGoals,
		BothTeamsToScore:   DefaultBTTS,
		Confidence:         FallbackConfidence,
		Insights: football.Insights{
			Main: []string{
				"Fallback analysis: statistics could not be processed",
				"No favourite identified (limited data)",
				fmt.Sprintf("Goal environment unknown: %.1f goal baseline", DefaultGoals),
				"Decisive factor unavailable (limited data)",
			},
		},
		RiskFactors: football.RiskFactors{
			High: []string{"Limited data: fallback analysis, treat every market with caution"},
		},
		KeyPredictions: football.KeyPredictions{
			MostLikely:     "Unclear (limited data)",
			SurpriseFactor: "Unknown",
			SafetyBet:      "No safe selection without data",
		},
		Fallback:    true,
		GeneratedAt: time.Now().UTC(),
	}
}
