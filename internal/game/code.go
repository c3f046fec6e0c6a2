package game

import (
	"errors"
	"fmt"
)

// CodeLen is the number of digits in every secret and guess.
const CodeLen = 4

var ErrInvalidCode = errors.New("invalid code")

// Code is four pairwise-distinct decimal digits. Position matters: 0123 and
// 3210 are different codes. The zero value is not a valid Code; build one
// with NewCode or ParseCode.
type Code struct {
	d    [CodeLen]uint8
	mask uint16 // bit k set <=> digit k present
}

func NewCode(d0, d1, d2, d3 int) (Code, error) {
	digits := [CodeLen]int{d0, d1, d2, d3}

	var c Code
	for i, d := range digits {
		if d < 0 || d > 9 {
			return Code{}, fmt.Errorf("%w: digit %d at position %d is out of range 0-9", ErrInvalidCode, d, i)
		}
		bit := uint16(1) << d
		if c.mask&bit != 0 {
			return Code{}, fmt.Errorf("%w: digit %d repeats", ErrInvalidCode, d)
		}
		c.mask |= bit
		c.d[i] = uint8(d)
	}
	return c, nil
}

// MustCode is NewCode for constants and tests.
func MustCode(d0, d1, d2, d3 int) Code {
	c, err := NewCode(d0, d1, d2, d3)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCode reads the canonical form: exactly four digits, no separators,
// leading zeros kept ("0123").
func ParseCode(s string) (Code, error) {
	if len(s) != CodeLen {
		return Code{}, fmt.Errorf("%w: %q must be exactly %d digits", ErrInvalidCode, s, CodeLen)
	}
	var d [CodeLen]int
	for i := 0; i < CodeLen; i++ {
		if s[i] < '0' || s[i] > '9' {
			return Code{}, fmt.Errorf("%w: %q contains a non-digit", ErrInvalidCode, s)
		}
		d[i] = int(s[i] - '0')
	}
	return NewCode(d[0], d[1], d[2], d[3])
}

func MustParseCode(s string) Code {
	c, err := ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Digit returns the digit at position i (0..3).
func (c Code) Digit(i int) int { return int(c.d[i]) }

func (c Code) Digits() [CodeLen]int {
	var out [CodeLen]int
	for i, d := range c.d {
		out[i] = int(d)
	}
	return out
}

// Contains reports whether digit d appears anywhere in the code.
func (c Code) Contains(d int) bool {
	return d >= 0 && d <= 9 && c.mask&(1<<d) != 0
}

// IsZero reports whether c is the unconstructed zero value.
func (c Code) IsZero() bool { return c.mask == 0 }

func (c Code) String() string {
	b := make([]byte, CodeLen)
	for i, d := range c.d {
		b[i] = '0' + d
	}
	return string(b)
}

func (c Code) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, fmt.Errorf("%w: zero value", ErrInvalidCode)
	}
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(b []byte) error {
	parsed, err := ParseCode(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
