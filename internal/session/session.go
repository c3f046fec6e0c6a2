package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/metrics"
	"example.com/bnc-solver/internal/solver"
)

var (
	ErrNotGuessing = errors.New("session is not waiting for feedback")
	ErrBusy        = errors.New("session already has a connection")
)

// Session is one solve driven by a remote human: the server guesses, the
// client answers with bulls and cows.
type Session struct {
	id string
	mu sync.Mutex

	solver    *solver.Solver
	tracker   *solver.Tracker
	maxRounds int
	log       *slog.Logger

	phase   string // guessing|solved|failed
	round   int
	guess   game.Code
	history []RoundHistoryItem

	conn       *ClientConn
	lastActive time.Time
	now        func() time.Time
}

func NewSession(id string, s *solver.Solver, maxRounds int, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	sess := &Session{
		id:        id,
		solver:    s,
		maxRounds: maxRounds,
		log:       log.With("session", id),
		now:       time.Now,
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.resetLocked(); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Attach(cc *ClientConn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return ErrBusy
	}
	s.conn = cc
	s.touchLocked()
	return nil
}

func (s *Session) Detach(cc *ClientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == cc {
		s.conn = nil
	}
	s.touchLocked()
}

// SubmitFeedback answers the open guess. Out-of-range counts fail with
// game.ErrInvalidFeedback; counts that contradict earlier rounds fail with
// solver.ErrNoConsistentSecret. In both cases the guess stays open.
func (s *Session) SubmitFeedback(bulls, cows int) error {
	fb, err := game.NewFeedback(bulls, cows)
	if err != nil {
		metrics.FeedbackRejected.WithLabelValues("range").Inc()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.phase != PhaseGuessing {
		return ErrNotGuessing
	}

	if fb.Solved() {
		s.appendHistoryLocked(fb)
		s.phase = PhaseSolved
		metrics.SessionsFinished.WithLabelValues("solved").Inc()
		metrics.RoundsToSolve.WithLabelValues(metrics.DriverSession).Observe(float64(s.round))
		s.log.Info("session solved", "secret", s.guess.String(), "rounds", s.round)

		s.sendLocked(Envelope{Type: TypeSolved, Payload: mustJSON(SolvedPayload{Secret: s.guess.String(), Rounds: s.round})})
		s.broadcastStateLocked()
		return nil
	}

	if err := s.tracker.Record(s.guess, fb); err != nil {
		if errors.Is(err, solver.ErrNoConsistentSecret) {
			metrics.FeedbackRejected.WithLabelValues("inconsistent").Inc()
		}
		return err
	}
	s.appendHistoryLocked(fb)

	if s.maxRounds > 0 && s.round >= s.maxRounds {
		s.phase = PhaseFailed
		metrics.SessionsFinished.WithLabelValues("round_limit").Inc()
		s.log.Warn("session hit round limit", "rounds", s.round)
		s.broadcastStateLocked()
		return fmt.Errorf("%w: %d", solver.ErrRoundLimit, s.maxRounds)
	}

	return s.startRoundLocked()
}

// Restart throws the history away and opens a new game in the same
// session.
func (s *Session) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if err := s.resetLocked(); err != nil {
		return err
	}
	s.broadcastStateLocked()
	return nil
}

func (s *Session) SendErrorTo(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sendLocked(Envelope{
		Type:    TypeError,
		Payload: mustJSON(ErrorPayload{Code: code, Message: message}),
	})
}

func (s *Session) SendState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcastStateLocked()
}

// State returns a snapshot for tests and the HTTP layer.
func (s *Session) State() StatePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildStateLocked()
}

// Idle reports whether the session has had no connection and no activity
// for longer than ttl.
func (s *Session) Idle(ttl time.Duration) bool {
	idle, _ := s.idlePhase(ttl)
	return idle
}

// idlePhase reads Idle and Phase under one lock.
func (s *Session) idlePhase(ttl time.Duration) (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn == nil && s.now().Sub(s.lastActive) > ttl, s.phase
}

func (s *Session) Phase() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) resetLocked() error {
	s.tracker = s.solver.NewTracker()
	s.phase = PhaseGuessing
	s.round = 0
	s.history = nil
	s.touchLocked()
	return s.startRoundLocked()
}

func (s *Session) startRoundLocked() error {
	guess, err := s.tracker.Next()
	if err != nil {
		return err
	}
	s.round++
	s.guess = guess

	s.sendLocked(Envelope{Type: TypeGuess, Payload: mustJSON(GuessPayload{
		Round:      s.round,
		Guess:      guess.String(),
		Candidates: len(s.tracker.Candidates()),
	})})
	s.broadcastStateLocked()
	return nil
}

func (s *Session) appendHistoryLocked(fb game.Feedback) {
	s.history = append(s.history, RoundHistoryItem{
		Round: s.round,
		Guess: s.guess.String(),
		Bulls: fb.Bulls(),
		Cows:  fb.Cows(),
	})
}

func (s *Session) buildStateLocked() StatePayload {
	candidates := len(s.tracker.Candidates())
	if s.phase == PhaseSolved {
		candidates = 1
	}
	return StatePayload{
		SessionID:  s.id,
		Phase:      s.phase,
		Round:      s.round,
		Guess:      s.guess.String(),
		Candidates: candidates,
		History:    append([]RoundHistoryItem(nil), s.history...),
	}
}

func (s *Session) broadcastStateLocked() {
	s.sendLocked(Envelope{Type: TypeState, Payload: mustJSON(s.buildStateLocked())})
}

func (s *Session) sendLocked(env Envelope) {
	if s.conn == nil {
		return
	}
	b, _ := json.Marshal(env)
	select {
	case s.conn.send <- b:
	default:
		s.log.Warn("dropping message for slow client", "type", env.Type)
	}
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
