package solver

import (
	"context"
	"errors"
	"fmt"

	"example.com/bnc-solver/internal/game"
)

var ErrRoundLimit = errors.New("round limit reached")

// FeedbackSource answers a guess: a human, a remote client or a known
// secret.
type FeedbackSource interface {
	Feedback(ctx context.Context, guess game.Code) (game.Feedback, error)
}

// Oracle answers from a known secret.
type Oracle struct {
	Secret game.Code
}

// Feedback refuses zero-value codes rather than scoring them.
func (o Oracle) Feedback(_ context.Context, guess game.Code) (game.Feedback, error) {
	if o.Secret.IsZero() {
		return game.Feedback{}, fmt.Errorf("%w: oracle secret is the zero value", game.ErrInvalidCode)
	}
	if guess.IsZero() {
		return game.Feedback{}, fmt.Errorf("%w: guess is the zero value", game.ErrInvalidCode)
	}
	return game.Evaluate(o.Secret, guess), nil
}

// Play runs the guess/feedback loop until four bulls and returns the number
// of rounds played, the winning one included. maxRounds <= 0 means no limit.
// Errors from the source are returned as is; ErrNoConsistentSecret means the
// source contradicted itself.
func Play(ctx context.Context, t *Tracker, src FeedbackSource, maxRounds int) (int, error) {
	for round := 1; ; round++ {
		if maxRounds > 0 && round > maxRounds {
			return round - 1, fmt.Errorf("%w: %d", ErrRoundLimit, maxRounds)
		}
		if err := ctx.Err(); err != nil {
			return round - 1, err
		}

		guess, err := t.Next()
		if err != nil {
			return round - 1, err
		}
		if guess.IsZero() {
			return round - 1, fmt.Errorf("%w: guess is the zero value", game.ErrInvalidCode)
		}
		fb, err := src.Feedback(ctx, guess)
		if err != nil {
			return round - 1, err
		}
		if fb.Solved() {
			return round, nil
		}
		if err := t.Record(guess, fb); err != nil {
			return round, err
		}
	}
}
