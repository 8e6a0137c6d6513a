package domain

import (
	"fmt"
	"strings"
)

// Performance is the user's self-reported recall quality for a single review.
type Performance string

// Possible performance values
const (
	PerformanceAgain  Performance = "again"
	PerformanceHard   Performance = "hard"
	PerformanceMedium Performance = "medium"
	PerformanceEasy   Performance = "easy"
)

// Performances lists every valid rating, weakest first.
var Performances = []Performance{
	PerformanceAgain,
	PerformanceHard,
	PerformanceMedium,
	PerformanceEasy,
}

// Valid reports whether p is one of the known ratings.
func (p Performance) Valid() bool {
	switch p {
	case PerformanceAgain, PerformanceHard, PerformanceMedium, PerformanceEasy:
		return true
	default:
		return false
	}
}

// ParsePerformance converts untrusted input into a Performance.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParsePerformance(s string) (Performance, error) {
	p := Performance(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPerformance, s)
	}
	return p, nil
}
