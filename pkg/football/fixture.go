package football

/**
* The football package holds the data model shared by the analysers, the suggestion
* generator and the statistics provider. Everything that comes from the provider may be
* partially populated, so counts that can be missing are pointers.
 */

import (
	"fmt"
	"time"
)

// Team is a club or national side as reported by the statistics provider
type Team struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Country  string `json:"country,omitempty"`
	Founded  *int   `json:"founded,omitempty"`
	National bool   `json:"national"`
	Logo     string `json:"logo,omitempty"`
}

// League describes the competition a fixture belongs to
type League struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Type    string `json:"type,omitempty"` // "League" or "Cup"
	Season  int    `json:"season,omitempty"`
	Round   string `json:"round,omitempty"`
}

// Score holds a pair of goal counts; either side is nil until known
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Known reports whether both sides of the score are populated
func (s Score) Known() bool {
	return s.Home != nil && s.Away != nil
}

// Fixture is one scheduled or completed match. It is read-only to the analysers.
type Fixture struct {
	ID       int       `json:"id"`
	Kickoff  time.Time `json:"kickoff"`
	Venue    string    `json:"venue,omitempty"`
	City     string    `json:"city,omitempty"`
	Status   string    `json:"status,omitempty"` // provider short status: NS, FT, AET, PST...
	Referee  string    `json:"referee,omitempty"`
	League   League    `json:"league"`
	Home     Team      `json:"home"`
	Away     Team      `json:"away"`
	Goals    Score     `json:"goals"`
	HalfTime Score     `json:"halfTime"`
}

// Result is a match outcome from one team's point of view
type Result string

const (
	Win  Result = "W"
	Draw Result = "D"
	Loss Result = "L"
)

/////////////////////////////////////////////////////////////////////////
////// Status Query Methods
/////////////////////////////////////////////////////////////////////////

// HasBeenPlayed is true when both final scores are known
func (f *Fixture) HasBeenPlayed() bool {
	return f.Goals.Known()
}

// Involves reports whether the team took part in the fixture
func (f *Fixture) Involves(teamID int) bool {
	return f.Home.ID == teamID || f.Away.ID == teamID
}

// IsHomeFor reports whether teamID was the home side
func (f *Fixture) IsHomeFor(teamID int) bool {
	return f.Home.ID == teamID
}

// Opponent returns the side teamID played against
func (f *Fixture) Opponent(teamID int) Team {
	if f.Home.ID == teamID {
		return f.Away
	}
	return f.Home
}

// GoalsFor returns goals scored and conceded by teamID. ok is false when the score is unknown
// or the team did not play.
func (f *Fixture) GoalsFor(teamID int) (scored int, conceded int, ok bool) {
	if !f.HasBeenPlayed() || !f.Involves(teamID) {
		return 0, 0, false
	}
	if f.IsHomeFor(teamID) {
		return *f.Goals.Home, *f.Goals.Away, true
	}
	return *f.Goals.Away, *f.Goals.Home, true
}

// ResultFor classifies the fixture from teamID's perspective
func (f *Fixture) ResultFor(teamID int) (Result, bool) {
	scored, conceded, ok := f.GoalsFor(teamID)
	if !ok {
		return "", false
	}
	switch {
	case scored > conceded:
		return Win, true
	case scored == conceded:
		return Draw, true
	default:
		return Loss, true
	}
}

// ScoreString renders the final score, empty when the match has not been played
func (f *Fixture) ScoreString() string {
	if !f.HasBeenPlayed() {
		return ""
	}
	return fmt.Sprintf("%d - %d", *f.Goals.Home, *f.Goals.Away)
}

// Title is "Home vs Away", used in reasoning and log lines
func (f *Fixture) Title() string {
	return f.Home.Name + " vs " + f.Away.Name
}

// IntPtr is a convenience for building optional counts
func IntPtr(v int) *int {
	return &v
}

// FloatPtr is a convenience for building optional values
func FloatPtr(v float64) *float64 {
	return &v
}
