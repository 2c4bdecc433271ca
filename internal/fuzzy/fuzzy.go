// Package fuzzy ranks option and subcommand names by similarity to a
// mistyped input. It backs the "a similar argument exists" tips.
package fuzzy

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Matcher provides fuzzy matching functionality for CLI suggestions
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a new fuzzy matcher with the given max edit distance
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2, // Don't suggest for very short inputs
	}
}

// Match represents a fuzzy match result
type Match struct {
	Value    string
	Distance int
	Prefix   int     // leading runes shared with the input
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest finds the best matching string from candidates.
// Returns empty string if no good match found.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches finds all matching strings from candidates, sorted by quality.
// Full ties keep candidate order.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len([]rune(input)) < m.minLength {
		return nil
	}

	var matches []Match
	in := []rune(strings.ToLower(input))

	for _, candidate := range candidates {
		c := []rune(strings.ToLower(candidate))
		if string(in) == string(c) {
			continue
		}
		if abs(len(in)-len(c)) > m.maxDistance {
			continue
		}

		distance := Distance(in, c)
		if distance > m.maxDistance {
			continue
		}
		matches = append(matches, Match{
			Value:    candidate,
			Distance: distance,
			Prefix:   commonPrefix(in, c),
			Score:    score(in, c, distance),
		})
	}

	// Scores saturate at 1.0, so equal scores fall back to distance and
	// then to the shared prefix.
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch {
		case a.Score != b.Score:
			return a.Score > b.Score
		case a.Distance != b.Distance:
			return a.Distance < b.Distance
		default:
			return a.Prefix > b.Prefix
		}
	})

	return matches
}

// Distance is the Levenshtein distance between a and b with unit costs for
// insertion, deletion and substitution.
func Distance(a, b []rune) int {
	return levenshtein.DistanceForStrings(a, b, levenshtein.DefaultOptionsWithSub)
}

// score computes a match quality score (0.0 to 1.0) from the edit distance,
// the shared prefix and the length difference.
func score(input, candidate []rune, distance int) float64 {
	maxLen := max(len(input), len(candidate))
	if maxLen == 0 {
		return 1.0
	}

	s := 1.0 - float64(distance)/float64(maxLen)

	if p := commonPrefix(input, candidate); p > 0 {
		s += float64(p) / float64(min(len(input), len(candidate))) * 0.3
	}
	s += (1.0 - float64(abs(len(input)-len(candidate)))/float64(maxLen)) * 0.2

	if s > 1.0 {
		s = 1.0
	}
	return s
}

func commonPrefix(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// Convenience functions for CLI usage

// FindBestFlag finds the best matching flag name
func FindBestFlag(input string, flags []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, flags)
}

// FindBestCommand finds the best matching command name
func FindBestCommand(input string, commands []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, commands)
}

// FindSuggestions finds up to maxSuggestions candidates for an error message.
func FindSuggestions(input string, candidates []string, maxDistance, maxSuggestions int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	suggestions := make([]string, 0, len(matches))
	for _, match := range matches {
		suggestions = append(suggestions, match.Value)
	}
	return suggestions
}
