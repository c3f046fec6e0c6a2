package game

import "sync"

// UniverseSize is 10*9*8*7, the number of valid codes.
const UniverseSize = 5040

var universe = sync.OnceValue(func() []Code {
	out := make([]Code, 0, UniverseSize)
	for a := 0; a <= 9; a++ {
		for b := 0; b <= 9; b++ {
			for c := 0; c <= 9; c++ {
				for d := 0; d <= 9; d++ {
					code, err := NewCode(a, b, c, d)
					if err != nil {
						continue
					}
					out = append(out, code)
				}
			}
		}
	}
	return out
})

// Universe returns every valid Code in ascending numeric order. The slice is
// built once and shared by the whole process; callers must not modify it.
func Universe() []Code {
	return universe()
}
