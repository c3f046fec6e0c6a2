package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"example.com/bnc-solver/internal/metrics"
	"example.com/bnc-solver/internal/solver"
	"github.com/google/uuid"
)

type Config struct {
	MaxRounds  int           // per game; 0 => no limit
	SessionTTL time.Duration // idle sessions older than this are swept; 0 => never
	Seed       uint64        // 0 => every session gets a random seed
	Options    []solver.Option
}

// Service keeps sessions in memory. Each session gets its own Solver and
// random source, so sessions never share mutable state.
type Service struct {
	mu sync.Mutex
	in map[string]*Session

	cfg   Config
	log   *slog.Logger
	seq   uint64
	newID func() string
}

func NewService(cfg Config, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		in:    make(map[string]*Session),
		cfg:   cfg,
		log:   log,
		newID: newSessionID,
	}
}

func (s *Service) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	id := s.newID()
	s.seq++
	seed := s.cfg.Seed + s.seq
	if s.cfg.Seed == 0 {
		seed = rand.Uint64()
	}
	s.mu.Unlock()

	rng := rand.New(rand.NewPCG(seed, seed))
	sess, err := NewSession(id, solver.New(rng, s.cfg.Options...), s.cfg.MaxRounds, s.log)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.in[id] = sess
	s.mu.Unlock()

	metrics.SessionsStarted.Inc()
	s.log.DebugContext(ctx, "session created", "session", id)
	return sess, nil
}

func (s *Service) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.in[id]
	return sess, ok
}

func (s *Service) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.in, id)
}

func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.in)
}

// Sweep drops sessions idle for longer than the configured TTL and returns
// how many were removed.
func (s *Service) Sweep() int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.in {
		idle, phase := sess.idlePhase(s.cfg.SessionTTL)
		if !idle {
			continue
		}
		if phase == PhaseGuessing {
			metrics.SessionsFinished.WithLabelValues("abandoned").Inc()
		}
		delete(s.in, id)
		removed++
	}
	if removed > 0 {
		s.log.Info("swept idle sessions", "removed", removed, "left", len(s.in))
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if s.cfg.SessionTTL <= 0 || interval <= 0 {
		<-ctx.Done()
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.Sweep()
		}
	}
}

// newSessionID is a UUID without dashes, so it fits the [a-z0-9] path
// segment accepted by /ws/{id}.
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
