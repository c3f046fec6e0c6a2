package game

import (
	"errors"
	"fmt"
	"math/bits"
)

var ErrInvalidFeedback = errors.New("invalid feedback")

// Feedback is the (bulls, cows) answer to a guess.
// 0 <= bulls, cows and bulls+cows <= 4.
type Feedback struct {
	bulls uint8
	cows  uint8
}

// Win returns the feedback for a guess equal to the secret.
func Win() Feedback { return Feedback{bulls: CodeLen} }

// NewFeedback validates counts coming from outside the engine (a human, a
// client message). Range is checked, achievability is not: 3 bulls 1 cow is
// accepted here and simply matches no candidate.
func NewFeedback(bulls, cows int) (Feedback, error) {
	if bulls < 0 || bulls > CodeLen {
		return Feedback{}, fmt.Errorf("%w: bulls=%d out of range 0-%d", ErrInvalidFeedback, bulls, CodeLen)
	}
	if cows < 0 || cows > CodeLen {
		return Feedback{}, fmt.Errorf("%w: cows=%d out of range 0-%d", ErrInvalidFeedback, cows, CodeLen)
	}
	if bulls+cows > CodeLen {
		return Feedback{}, fmt.Errorf("%w: bulls+cows=%d exceeds %d", ErrInvalidFeedback, bulls+cows, CodeLen)
	}
	return Feedback{bulls: uint8(bulls), cows: uint8(cows)}, nil
}

func MustFeedback(bulls, cows int) Feedback {
	fb, err := NewFeedback(bulls, cows)
	if err != nil {
		panic(err)
	}
	return fb
}

// Evaluate compares two codes. Bulls are equal digits in equal positions;
// cows are digits shared by both codes in different positions. Since digits
// within a Code are distinct, cows = |shared digits| - bulls, and the result
// does not depend on argument order.
func Evaluate(secret, guess Code) Feedback {
	var bulls uint8
	for i := 0; i < CodeLen; i++ {
		if secret.d[i] == guess.d[i] {
			bulls++
		}
	}
	shared := uint8(bits.OnesCount16(secret.mask & guess.mask))
	return Feedback{bulls: bulls, cows: shared - bulls}
}

func (f Feedback) Bulls() int { return int(f.bulls) }
func (f Feedback) Cows() int  { return int(f.cows) }

// Solved reports four bulls.
func (f Feedback) Solved() bool { return f.bulls == CodeLen }

func (f Feedback) String() string {
	return fmt.Sprintf("%dB%dC", f.bulls, f.cows)
}
