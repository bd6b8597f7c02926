package form

import (
	"strings"

	"github.com/richard-senior/betscout/pkg/football"
)

// MaxMatches is the size of the form window
const MaxMatches = 10

// Analyze reduces a team's recent fixtures (most recent first) into a TeamForm.
// Only the first MaxMatches entries are looked at. Entries without a final score, or that the
// team did not play in, are skipped rather than counted as defeats.
func Analyze(matches []football.Fixture, teamID int) football.TeamForm {
	f := football.TeamForm{TeamID: teamID}
	if len(matches) > MaxMatches {
		matches = matches[:MaxMatches]
	}

	var seq strings.Builder
	for i := range matches {
		m := &matches[i]
		scored, conceded, ok := m.GoalsFor(teamID)
		if !ok {
			continue
		}
		result, _ := m.ResultFor(teamID)

		f.Matches++
		f.GoalsFor += scored
		f.GoalsAgainst += conceded
		switch result {
		case football.Win:
			f.Wins++
		case football.Draw:
			f.Draws++
		case football.Loss:
			f.Losses++
		}
		if conceded == 0 {
			f.CleanSheets++
		}
		if scored == 0 {
			f.FailedToScore++
		}
		if scored > 0 && conceded > 0 {
			f.BothScored++
		}
		seq.WriteString(string(result))
	}
	f.Sequence = seq.String()

	if f.Matches == 0 {
		return f
	}
	n := float64(f.Matches)
	f.WinRate = football.FloatPtr(float64(f.Wins) / n * 100)
	f.AvgGoalsFor = football.FloatPtr(float64(f.GoalsFor) / n)
	f.AvgGoalsAgainst = football.FloatPtr(float64(f.GoalsAgainst) / n)
	return f
}

// Last returns up to n played fixtures from the head of the list, preserving order
func Last(matches []football.Fixture, n int) []football.Fixture {
	out := make([]football.Fixture, 0, n)
	for _, m := range matches {
		if len(out) == n {
			break
		}
		if m.HasBeenPlayed() {
			out = append(out, m)
		}
	}
	return out
}

// Streak counts consecutive results of the given kind from the most recent match backwards
func Streak(f football.TeamForm, r football.Result) int {
	n := 0
	for _, c := range f.Sequence {
		if football.Result(c) != r {
			break
		}
		n++
	}
	return n
}
