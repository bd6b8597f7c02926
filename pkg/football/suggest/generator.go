package suggest

import (
	"math"
	"sort"
	"strconv"

	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/catalog"
	"github.com/richard-senior/betscout/pkg/football/risk"
)

// MinConfidenceWithoutOdd drops unpriced suggestions below this confidence
const MinConfidenceWithoutOdd = 50.0

// Expected-goals lines shared with the analysis key predictions
const (
	// OpenGameGoals and above backs Over 2.5
	OpenGameGoals = 2.7
	// SafeUnderGoals and below backs Under 3.5; above it the safe pick is Over 1.5
	SafeUnderGoals = 2.6
)

// Generator turns a GameAnalysis into ranked bet suggestions. It holds no state between calls.
type Generator struct {
	Catalog *catalog.Catalog
}

// Generate evaluates every rule, prices what it can, classifies risk, filters and ranks.
// IDs are stable per rule and selection so the same fixture yields the same ids on every call.
func (g Generator) Generate(in Input) []football.BetSuggestion {
	if in.Analysis == nil {
		return nil
	}
	cat := g.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	f := newFacts(&in, cat.IsRivalry(in.Fixture.Home.Name, in.Fixture.Away.Name))

	var out []football.BetSuggestion
	for i := range rules {
		if s, ok := evaluate(&rules[i], f, rules[i].side); ok {
			out = append(out, s)
		}
	}
	for i := range playerRules {
		pr := &playerRules[i]
		for _, p := range pr.candidates(f) {
			pf := *f
			pf.player = &p
			if s, ok := evaluate(&pr.rule, &pf, pf.playerSide()); ok {
				out = append(out, s)
			}
		}
	}
	return Rank(out)
}

func evaluate(r *rule, f *facts, strengthSide side) (football.BetSuggestion, bool) {
	if !r.when(f) {
		return football.BetSuggestion{}, false
	}
	sel := r.selection(f)
	s := football.BetSuggestion{
		ID:         r.id,
		Category:   r.category,
		Market:     r.market,
		Selection:  sel,
		Reasoning:  r.reason(f),
		Confidence: math.Round(r.confidence(f)*10) / 10,
		Criteria:   r.criteria(f),
		Handicap:   r.handicap,
	}
	if f.player != nil {
		s.ID = r.id + "-" + strconv.Itoa(f.player.PlayerID)
		s.Player = f.player.Name
	}
	if m, ok := risk.FindOdd(f.in.Odds, r.market, sel); ok && m.Odd > 1 && (m.Exact || !r.exactOdd) {
		s.RealOdd = football.FloatPtr(m.Odd)
		s.Bookmaker = m.Bookmaker
	}
	s.Risk = risk.Classify(s.RealOdd, s.Confidence, f.strength(strengthSide))
	return s, true
}

// Rank drops short-priced and weak unpriced suggestions, then sorts by risk tier (Low first)
// and descending confidence within a tier
func Rank(in []football.BetSuggestion) []football.BetSuggestion {
	out := make([]football.BetSuggestion, 0, len(in))
	for _, s := range in {
		if s.RealOdd != nil && *s.RealOdd < risk.MinOdd {
			continue
		}
		if s.RealOdd == nil && s.Confidence < MinConfidenceWithoutOdd {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Risk != out[j].Risk {
			return out[i].Risk < out[j].Risk
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
