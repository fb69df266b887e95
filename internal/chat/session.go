package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultIdleTTL is how long a session survives without a new turn.
const DefaultIdleTTL = 30 * time.Minute

// Session sequences the turns of one conversation. Each Begin supersedes
// every earlier turn; renders from superseded turns are dropped.
type Session struct {
	ID string

	mu       sync.Mutex
	turn     uint64
	lastSeen time.Time
}

// Begin starts a new turn and returns its number.
func (s *Session) Begin(now time.Time) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn++
	s.lastSeen = now
	return s.turn
}

// Current reports whether turn is the latest one.
func (s *Session) Current(turn uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn == turn
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Guard wraps sink so that it forwards only while turn is current.
func (s *Session) Guard(turn uint64, sink Sink) Sink {
	return &guardedSink{session: s, turn: turn, next: sink}
}

type guardedSink struct {
	session *Session
	turn    uint64
	next    Sink
}

// do holds the session lock while forwarding so no render slips out after a
// newer Begin has returned.
func (g *guardedSink) do(fn func(Sink)) {
	g.session.mu.Lock()
	defer g.session.mu.Unlock()
	if g.session.turn != g.turn {
		return
	}
	fn(g.next)
}

func (g *guardedSink) RenderMessage(sender Sender, text string) {
	g.do(func(s Sink) { s.RenderMessage(sender, text) })
}

func (g *guardedSink) RenderCard(card Card) { g.do(func(s Sink) { s.RenderCard(card) }) }
func (g *guardedSink) ShowBusy()            { g.do(func(s Sink) { s.ShowBusy() }) }
func (g *guardedSink) HideBusy()            { g.do(func(s Sink) { s.HideBusy() }) }

// Sessions is a registry of live sessions keyed by id.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idleTTL  time.Duration
	now      func() time.Time
}

// NewSessions creates an empty registry. Sessions idle longer than idleTTL are
// dropped by Prune; non-positive values mean DefaultIdleTTL.
func NewSessions(idleTTL time.Duration) *Sessions {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Sessions{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Get returns the session for id. An empty or unknown id yields a new
// session with a fresh id.
func (s *Sessions) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		return sess
	}
	sess := &Session{ID: uuid.NewString(), lastSeen: s.now()}
	s.sessions[sess.ID] = sess
	return sess
}

// Begin resolves id and starts a new turn on it.
func (s *Sessions) Begin(id string) (*Session, uint64) {
	sess := s.Get(id)
	return sess, sess.Begin(s.now())
}

// Prune drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Sessions) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
