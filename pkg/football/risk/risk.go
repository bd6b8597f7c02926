package risk

import (
	"math"
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
)

// MinOdd is the lowest real odd worth suggesting
const MinOdd = 1.30

// FromOdd classifies a real market odd. The bands are contiguous: < 1.35 Low, up to 1.50
// Medium, up to 1.70 High, anything longer Very High.
func FromOdd(odd float64) football.RiskLevel {
	switch {
	case odd < 1.35:
		return football.RiskLow
	case odd <= 1.50:
		return football.RiskMedium
	case odd <= 1.70:
		return football.RiskHigh
	default:
		return football.RiskVeryHigh
	}
}

// FromComposite classifies by the mean of the suggestion confidence and the team strength
func FromComposite(confidence, teamStrength float64) football.RiskLevel {
	avg := (confidence + teamStrength) / 2
	switch {
	case avg >= 80:
		return football.RiskLow
	case avg >= 60:
		return football.RiskMedium
	case avg >= 40:
		return football.RiskHigh
	default:
		return football.RiskVeryHigh
	}
}

// TeamStrength is a 0-100 rating from recent form and the analysis confidence.
// Without form it is the analysis confidence alone.
func TeamStrength(f football.TeamForm, analysisConfidence float64) float64 {
	if f.WinRate == nil {
		return clamp(analysisConfidence, 0, 100)
	}
	s := *f.WinRate*0.6 + analysisConfidence*0.4
	if f.AvgGoalsFor != nil && f.AvgGoalsAgainst != nil {
		// goal difference per game nudges the rating, capped at +/-10
		s += clamp((*f.AvgGoalsFor-*f.AvgGoalsAgainst)*5, -10, 10)
	}
	return clamp(s, 0, 100)
}

// Classify uses the odd when one was matched, the composite otherwise
func Classify(realOdd *float64, confidence, teamStrength float64) football.RiskLevel {
	if realOdd != nil {
		return FromOdd(*realOdd)
	}
	return FromComposite(confidence, teamStrength)
}

/////////////////////////////////////////////////////////////////////////
////// Odds matching
/////////////////////////////////////////////////////////////////////////

// Match is an odd found for a market/selection
type Match struct {
	Odd       float64
	Bookmaker string
	Market    string
	Value     string
	Exact     bool // the value matched the requested selection
}

// FindOdd searches every bookmaker for a market whose name equals the tag, then for one whose
// name contains it. Within each tier every bookmaker is searched for the selection (exact, then
// substring, case-insensitive) before any fallback. Failing a selection match the first listed
// value of the first matching market is used.
func FindOdd(odds *football.Odds, market, selection string) (Match, bool) {
	if odds.Empty() || market == "" {
		return Match{}, false
	}
	tag := strings.ToLower(market)
	tiers := []func(string) bool{
		func(name string) bool { return name == tag },
		func(name string) bool { return strings.Contains(name, tag) },
	}

	sel := strings.ToLower(strings.TrimSpace(selection))
	if sel != "" {
		for _, accept := range tiers {
			if m, ok := findValue(odds, accept, func(v string) bool { return v == sel }); ok {
				return m, true
			}
			if m, ok := findValue(odds, accept, func(v string) bool { return strings.Contains(v, sel) }); ok {
				return m, true
			}
		}
	}
	for _, accept := range tiers {
		if m, ok := firstValue(odds, accept); ok {
			return m, true
		}
	}
	return Match{}, false
}

// findValue returns the first value, across all bookmakers, in an accepted market whose
// lowercased name satisfies match
func findValue(odds *football.Odds, accept, match func(string) bool) (Match, bool) {
	for _, bk := range odds.Bookmakers {
		for _, mk := range bk.Markets {
			if !accept(strings.ToLower(mk.Name)) {
				continue
			}
			for _, v := range mk.Values {
				if match(strings.ToLower(v.Value)) {
					return Match{Odd: v.Odd, Bookmaker: bk.Name, Market: mk.Name, Value: v.Value, Exact: true}, true
				}
			}
		}
	}
	return Match{}, false
}

func firstValue(odds *football.Odds, accept func(string) bool) (Match, bool) {
	for _, bk := range odds.Bookmakers {
		for _, mk := range bk.Markets {
			if !accept(strings.ToLower(mk.Name)) || len(mk.Values) == 0 {
				continue
			}
			v := mk.Values[0]
			return Match{Odd: v.Odd, Bookmaker: bk.Name, Market: mk.Name, Value: v.Value}, true
		}
	}
	return Match{}, false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
