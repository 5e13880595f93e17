package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"videosearch-backend/internal/models"
)

// Debounce windows. AI mode waits longer because the external call is
// slow and costs money per request.
const (
	DefaultKeywordDebounce = 300 * time.Millisecond
	DefaultAIDebounce      = time.Second
)

// ResultSet is one settled response of a query session.
type ResultSet struct {
	Token   uint64                `json:"token"`
	Query   string                `json:"query"`
	Mode    models.SearchMode     `json:"mode"`
	Results []models.SearchResult `json:"results"`
	Error   string                `json:"error,omitempty"`
}

// Session is the per-user query state machine: Idle → Debouncing →
// InFlight → Settled, returning to Debouncing on any new input.
// Cancellation is advisory: every input bumps a monotonic token, and a
// response whose token no longer matches is discarded on arrival. No
// in-flight work is aborted, only its result ignored.
type Session struct {
	mu           sync.Mutex
	orchestrator *Orchestrator
	keywordDelay time.Duration
	aiDelay      time.Duration
	token        uint64
	timer        *time.Timer
	query        string
	mode         models.SearchMode
	out          chan ResultSet
	closed       bool
}

func NewSession(orch *Orchestrator) *Session {
	return NewSessionWithDelays(orch, DefaultKeywordDebounce, DefaultAIDebounce)
}

// NewSessionWithDelays exists so tests can collapse the debounce windows.
func NewSessionWithDelays(orch *Orchestrator, keywordDelay, aiDelay time.Duration) *Session {
	return &Session{
		orchestrator: orch,
		keywordDelay: keywordDelay,
		aiDelay:      aiDelay,
		mode:         models.ModeKeyword,
		out:          make(chan ResultSet, 8),
	}
}

// Results delivers settled result sets. Only responses carrying the
// newest token are ever published.
func (s *Session) Results() <-chan ResultSet {
	return s.out
}

// Update feeds new query text or a mode switch into the session. The
// previous in-flight token is invalidated and the debounce restarts.
func (s *Session) Update(query string, mode models.SearchMode) {
	if mode != models.ModeAI {
		mode = models.ModeKeyword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.mode = mode
	s.token++
	token := s.token

	if s.timer != nil {
		s.timer.Stop()
	}
	delay := s.keywordDelay
	if mode == models.ModeAI {
		delay = s.aiDelay
	}
	s.timer = time.AfterFunc(delay, func() { s.fire(token) })
}

// Close invalidates any pending work and closes the results channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.out)
}

func (s *Session) fire(token uint64) {
	s.mu.Lock()
	if token != s.token {
		s.mu.Unlock()
		return
	}
	query, mode := s.query, s.mode
	s.mu.Unlock()

	// Empty query settles immediately with an empty set.
	if strings.TrimSpace(query) == "" {
		s.publish(ResultSet{Token: token, Query: query, Mode: mode, Results: []models.SearchResult{}})
		return
	}

	results, err := s.orchestrator.Dispatch(context.Background(), query, mode)

	s.mu.Lock()
	superseded := token != s.token
	s.mu.Unlock()
	if superseded {
		return
	}

	rs := ResultSet{Token: token, Query: query, Mode: mode, Results: results}
	if rs.Results == nil {
		rs.Results = []models.SearchResult{}
	}
	if err != nil {
		rs.Error = err.Error()
	}
	s.publish(rs)
}

func (s *Session) publish(rs ResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	// Never block the engine on a slow consumer; a dropped set is stale
	// the moment the next one settles anyway.
	select {
	case s.out <- rs:
	default:
	}
}
