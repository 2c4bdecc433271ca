package archons

import (
	"fmt"
	"strconv"
	"strings"
)

// Unbounded marks an Arity without upper bound.
const Unbounded = -1

// Arity bounds the number of values a single occurrence consumes.
type Arity struct {
	Min int
	Max int // Unbounded for no limit
}

func exactly(n int) Arity { return Arity{Min: n, Max: n} }

// Bounded reports whether the arity has an upper bound.
func (a Arity) Bounded() bool { return a.Max != Unbounded }

// Full reports whether n values reach the upper bound.
func (a Arity) Full(n int) bool { return a.Bounded() && n >= a.Max }

func (a Arity) String() string {
	switch {
	case a.Max == Unbounded:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return strconv.Itoa(a.Min)
	default:
		return fmt.Sprintf("%d to %d", a.Min, a.Max)
	}
}

// ParseNumArgs parses a value count expression:
//
//	"n"     exactly n
//	"a..b"  a to b-1
//	"a..=b" a to b
//	"..b"   0 to b-1
//	"..=b"  0 to b
//	"a.."   a or more
//	".."    any number
func ParseNumArgs(s string) (Arity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Arity{}, fmt.Errorf("empty numArgs")
	}

	lo, hi, isRange := strings.Cut(s, "..")
	if !isRange {
		n, err := parseCount(s)
		if err != nil {
			return Arity{}, err
		}
		return exactly(n), nil
	}

	a := Arity{Max: Unbounded}
	if lo != "" {
		n, err := parseCount(lo)
		if err != nil {
			return Arity{}, err
		}
		a.Min = n
	}

	inclusive := strings.HasPrefix(hi, "=")
	hi = strings.TrimPrefix(hi, "=")
	if hi == "" {
		if inclusive {
			return Arity{}, fmt.Errorf("numArgs %q: missing upper bound after '..='", s)
		}
		return a, nil
	}
	n, err := parseCount(hi)
	if err != nil {
		return Arity{}, err
	}
	if !inclusive {
		n--
	}
	if n < a.Min {
		return Arity{}, fmt.Errorf("numArgs %q: empty range", s)
	}
	a.Max = n
	return a, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid value count %q", s)
	}
	return n, nil
}
