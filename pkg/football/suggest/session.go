package suggest

import "github.com/richard-senior/betscout/pkg/football"

// IDSet is the set of suggestion ids already shown in a session
type IDSet map[string]struct{}

// Has reports membership; a nil set is empty
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Clone returns an independent copy
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Session is the per-fixture dedup state held by the caller between generation triggers.
// The generator never stores it.
type Session struct {
	FixtureID int   `json:"fixtureId"`
	Used      IDSet `json:"-"`
}

// Pick returns up to limit suggestions from ranked that are not in used, in rank order, plus
// the updated set. When every suggestion has been used the set is reset and picking starts
// again from the top; cycled reports that. A limit <= 0 means no limit. used is not modified.
func Pick(ranked []football.BetSuggestion, used IDSet, limit int) (picked []football.BetSuggestion, next IDSet, cycled bool) {
	next = used.Clone()

	fresh := make([]football.BetSuggestion, 0, len(ranked))
	for _, s := range ranked {
		if !next.Has(s.ID) {
			fresh = append(fresh, s)
		}
	}
	if len(fresh) == 0 && len(ranked) > 0 {
		cycled = true
		next = IDSet{}
		fresh = ranked
	}

	if limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}
	picked = make([]football.BetSuggestion, len(fresh))
	copy(picked, fresh)
	for _, s := range picked {
		next[s.ID] = struct{}{}
	}
	return picked, next, cycled
}

// Remaining counts ranked suggestions not yet in used
func Remaining(ranked []football.BetSuggestion, used IDSet) int {
	n := 0
	for _, s := range ranked {
		if !used.Has(s.ID) {
			n++
		}
	}
	return n
}

// Next picks the following batch and records it in the session
func (s *Session) Next(ranked []football.BetSuggestion, limit int) (picked []football.BetSuggestion, cycled bool) {
	picked, s.Used, cycled = Pick(ranked, s.Used, limit)
	return picked, cycled
}
