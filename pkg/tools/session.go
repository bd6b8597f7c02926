package tools

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/betscout/pkg/football"
	"github.com/richard-senior/betscout/pkg/football/analysis"
	"github.com/richard-senior/betscout/pkg/football/suggest"
)

const (
	// DefaultSessionTTL is how long an idle session is kept
	DefaultSessionTTL = 2 * time.Hour
	maxSessions       = 256
)

// Session is one analysed fixture and the suggestions already shown for it
type Session struct {
	ID string

	mu        sync.Mutex
	result    analysis.Result
	ranked    []football.BetSuggestion
	generated bool
	dedup     suggest.Session
	lastUsed  time.Time
}

// SessionStore keeps sessions in memory only. Idle sessions expire and the oldest are dropped
// once the store is full.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{sessions: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// Create stores a new session for an analysis result
func (s *SessionStore) Create(res analysis.Result) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	fixtureID := 0
	if res.Analysis != nil {
		fixtureID = res.Analysis.FixtureID
	}
	sess := &Session{
		ID:       uuid.NewString(),
		result:   res,
		dedup:    suggest.Session{FixtureID: fixtureID, Used: suggest.IDSet{}},
		lastUsed: s.now(),
	}
	s.evictLocked()
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and marks it used
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastUsed) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastUsed = now
	return sess, true
}

// Len is the number of stored sessions, expired ones included until the next eviction
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) evictLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
	if len(s.sessions) < maxSessions {
		return
	}
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].lastUsed.Before(s.sessions[ids[j]].lastUsed)
	})
	for _, id := range ids[:len(ids)-maxSessions+1] {
		delete(s.sessions, id)
	}
}

// Batch is one suggestion trigger's outcome
type Batch struct {
	Suggestions []football.BetSuggestion
	Total       int
	Remaining   int
	Cycled      bool
}

// NextBatch generates the ranked list on first use, then hands out the next unseen suggestions
// and appends them to the session's analysis
func (sess *Session) NextBatch(gen suggest.Generator, limit int) Batch {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	a := sess.result.Analysis
	if !sess.generated {
		var in suggest.Input
		if sess.result.Bundle != nil {
			in = sess.result.Bundle.SuggestionInput(a)
		} else {
			in = suggest.Input{Analysis: a}
			if a != nil {
				in.Fixture = football.Fixture{ID: a.FixtureID, Home: football.Team{Name: a.HomeTeam}, Away: football.Team{Name: a.AwayTeam}}
			}
		}
		sess.ranked = gen.Generate(in)
		sess.generated = true
	}

	picked, cycled := sess.dedup.Next(sess.ranked, limit)
	if picked == nil {
		picked = []football.BetSuggestion{}
	}
	if a != nil {
		a.AttachSuggestions(picked)
	}
	return Batch{
		Suggestions: picked,
		Total:       len(sess.ranked),
		Remaining:   suggest.Remaining(sess.ranked, sess.dedup.Used),
		Cycled:      cycled,
	}
}

// Snapshot returns a copy of the session's analysis that later batches will not touch
func (sess *Session) Snapshot() *football.GameAnalysis {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	a := sess.result.Analysis
	if a == nil {
		return nil
	}
	c := *a
	c.BetSuggestions = append([]football.BetSuggestion(nil), a.BetSuggestions...)
	return &c
}
