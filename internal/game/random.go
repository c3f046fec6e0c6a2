package game

import (
	"errors"
	"fmt"
)

var ErrDigitAbsent = errors.New("digit not present")

// Rand is the random source for every non-deterministic choice.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// ExcludeDigits returns digits with one occurrence of each value in exclude
// removed, keeping the original order. Excluding a value that is not present
// (or is already used up by an earlier exclusion) fails with ErrDigitAbsent.
func ExcludeDigits(digits, exclude []int) ([]int, error) {
	out := append([]int(nil), digits...)
	for _, x := range exclude {
		idx := -1
		for i, d := range out {
			if d == x {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %d", ErrDigitAbsent, x)
		}
		out = append(out[:idx], out[idx+1:]...)
	}
	return out, nil
}

// RandomCode draws a code, preferring digits outside avoid. The first two
// positions always come from the preferred pool; if it has fewer than four
// digits, the last two are drawn from what is left of it plus the avoided
// digits.
func RandomCode(rng Rand, avoid []int) (Code, error) {
	all := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	pool, err := ExcludeDigits(all, avoid)
	if err != nil {
		return Code{}, err
	}
	if len(pool) < 2 {
		return Code{}, fmt.Errorf("%w: need at least 2 digits outside avoid, have %d", ErrInvalidCode, len(pool))
	}

	shuffle(rng, pool)
	a, b := pool[len(pool)-1], pool[len(pool)-2]
	pool = pool[:len(pool)-2]

	if len(pool) < 2 {
		pool = append(pool, avoid...)
		shuffle(rng, pool)
	}
	c, d := pool[len(pool)-1], pool[len(pool)-2]
	return NewCode(a, b, c, d)
}

func shuffle(rng Rand, s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
