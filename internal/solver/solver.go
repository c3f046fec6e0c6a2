// Package solver picks guesses for Bulls and Cows.
//
// The strategy is the simple consistent-random one: keep every code that
// would have produced all feedback seen so far, and guess one of them at
// random. The first guess is a fixed opener.
package solver

import (
	"errors"
	"fmt"

	"example.com/bnc-solver/internal/game"
)

var ErrNoConsistentSecret = errors.New("no consistent secret")

// DefaultOpener returns the first guess of every game unless overridden.
func DefaultOpener() game.Code { return game.MustParseCode("0123") }

type Solver struct {
	universe     []game.Code
	rng          game.Rand
	opener       game.Code
	randomOpener bool
}

type Option func(*Solver)

// WithOpener replaces the fixed first guess.
func WithOpener(c game.Code) Option {
	return func(s *Solver) {
		s.opener = c
		s.randomOpener = false
	}
}

// WithRandomOpener draws the first guess from the random source every game.
func WithRandomOpener() Option {
	return func(s *Solver) { s.randomOpener = true }
}

// ParseOpener turns a config value into an Option: "random" or a code.
func ParseOpener(s string) (Option, error) {
	if s == "random" {
		return WithRandomOpener(), nil
	}
	c, err := game.ParseCode(s)
	if err != nil {
		return nil, fmt.Errorf("opener: %w", err)
	}
	return WithOpener(c), nil
}

// WithUniverse restricts the search space. Intended for tests.
func WithUniverse(codes []game.Code) Option {
	return func(s *Solver) { s.universe = codes }
}

// New returns a Solver that breaks ties with rng. A Solver holds no per-game
// state, but rng is used on every call, so share one Solver between
// goroutines only if rng is safe for concurrent use.
func New(rng game.Rand, opts ...Option) *Solver {
	s := &Solver{
		universe: game.Universe(),
		rng:      rng,
		opener:   DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextGuess returns the next code to propose for the given history, or
// ErrNoConsistentSecret if no code can explain every recorded feedback.
func (s *Solver) NextGuess(h game.History) (game.Code, error) {
	if h.Len() == 0 {
		return s.Opener()
	}
	return s.pick(s.Candidates(h))
}

// Candidates filters the whole universe with the whole history.
func (s *Solver) Candidates(h game.History) []game.Code {
	var out []game.Code
	for _, c := range s.universe {
		if h.Consistent(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Solver) Opener() (game.Code, error) {
	if !s.randomOpener {
		return s.opener, nil
	}
	c, err := game.RandomCode(s.rng, nil)
	if err != nil {
		return game.Code{}, fmt.Errorf("random opener: %w", err)
	}
	return c, nil
}

func (s *Solver) pick(candidates []game.Code) (game.Code, error) {
	switch len(candidates) {
	case 0:
		return game.Code{}, ErrNoConsistentSecret
	case 1:
		return candidates[0], nil
	}
	return candidates[s.rng.IntN(len(candidates))], nil
}

// filter keeps the codes consistent with one more round.
func filter(codes []game.Code, e game.Entry) []game.Code {
	out := make([]game.Code, 0, len(codes)/4)
	for _, c := range codes {
		if e.Consistent(c) {
			out = append(out, c)
		}
	}
	return out
}
