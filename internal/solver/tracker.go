package solver

import (
	"fmt"

	"example.com/bnc-solver/internal/game"
)

// Tracker is the per-game state of one solve: the history and the candidate
// set it leaves. Each Record narrows the previous candidates with the newest
// round only, which gives the same set as filtering the universe with the
// whole history.
//
// A Tracker belongs to one game and must not be shared between goroutines.
type Tracker struct {
	s          *Solver
	history    game.History
	candidates []game.Code
}

func (s *Solver) NewTracker() *Tracker {
	return &Tracker{s: s, candidates: s.universe}
}

// Next returns the guess for the current round.
func (t *Tracker) Next() (game.Code, error) {
	if t.history.Len() == 0 {
		return t.s.Opener()
	}
	return t.s.pick(t.candidates)
}

// Record appends a round. Feedback that no remaining candidate can explain
// is rejected with ErrNoConsistentSecret and the tracker is left as it was,
// so the caller may ask for the feedback again.
func (t *Tracker) Record(guess game.Code, fb game.Feedback) error {
	e := game.Entry{Guess: guess, Feedback: fb}
	next := filter(t.candidates, e)
	if len(next) == 0 {
		return fmt.Errorf("%w: %s for %s contradicts %d earlier round(s)", ErrNoConsistentSecret, fb, guess, t.history.Len())
	}
	t.history.Append(guess, fb)
	t.candidates = next
	return nil
}

// Candidates returns the codes still consistent with the history. The slice
// must not be modified.
func (t *Tracker) Candidates() []game.Code { return t.candidates }

func (t *Tracker) History() game.History { return game.NewHistory(t.history.Entries()...) }

func (t *Tracker) Rounds() int { return t.history.Len() }
