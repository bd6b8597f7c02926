package football

import (
	"encoding/json"
	"fmt"
)

// BetCategory tags the market family of a suggestion
type BetCategory string

const (
	CategoryGoals      BetCategory = "goals"
	CategoryOutcome    BetCategory = "outcome"
	CategoryFirstHalf  BetCategory = "first-half"
	CategorySecondHalf BetCategory = "second-half"
	CategoryCorners    BetCategory = "corners"
	CategoryCards      BetCategory = "cards"
	CategorySpecial    BetCategory = "special"
	CategoryHandicap   BetCategory = "handicap"
	CategoryPlayer     BetCategory = "player"
	CategoryHomeGoals  BetCategory = "home-goals"
	CategoryAwayGoals  BetCategory = "away-goals"
)

// RiskLevel is the four-tier risk label. The zero value is Low and tiers sort ascending.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "Low"
	case RiskMedium:
		return "Medium"
	case RiskHigh:
		return "High"
	case RiskVeryHigh:
		return "Very High"
	default:
		return "Unknown"
	}
}

// MarshalJSON writes the label rather than the ordinal
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON accepts the label
func (r *RiskLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, l := range []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh} {
		if l.String() == s {
			*r = l
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", s)
}

// BetSuggestion is one candidate wager. IDs are stable per rule and selection, so they are
// only unique within a single generation batch for one fixture.
type BetSuggestion struct {
	ID         string      `json:"id"`
	Category   BetCategory `json:"category"`
	Market     string      `json:"market"`
	Selection  string      `json:"selection"`
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence"`
	RealOdd    *float64    `json:"realOdd,omitempty"`
	Bookmaker  string      `json:"bookmaker,omitempty"`
	Risk       RiskLevel   `json:"risk"`
	Criteria   []string    `json:"criteria"`
	Player     string      `json:"player,omitempty"`
	Handicap   *float64    `json:"handicap,omitempty"`
}
