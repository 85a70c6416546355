// Package similarity converts edit distance or character-set overlap into a
// normalized score between 0 and 1.
//
// Both policies operate on Unicode code points:
//
//	levenshtein = 1 - distance(a, b) / max(len(a), len(b))
//	jaccard     = |set(a) ∩ set(b)| / |set(a) ∪ set(b)|
//
// Two empty texts score 0 under levenshtein and 1 under jaccard.
package similarity

import (
	"unicode/utf8"

	"github.com/baditaflorin/go_string_similarity/internal/core/distance"
	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
)

// Score computes the similarity of a and b under the given policy.
// Unknown policies score 0.
func Score(policy domain.Policy, a, b string) float64 {
	switch policy {
	case domain.PolicyLevenshtein:
		return Levenshtein(a, b)
	case domain.PolicyJaccard:
		return Jaccard(a, b)
	default:
		return 0
	}
}

// Levenshtein returns 1 - distance/maxLength, or 0 when both texts are empty.
func Levenshtein(a, b string) float64 {
	score, _ := levenshteinScore(a, b)
	return score
}

func levenshteinScore(a, b string) (float64, int) {
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 0, 0
	}
	d := distance.Levenshtein(a, b)
	return 1 - float64(d)/float64(maxLen), d
}

// Jaccard returns the Jaccard index of the unique characters of a and b.
// Two empty texts are identical and score 1.
func Jaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
