// Package stringsimilarity offers string similarity scoring, best-match
// selection, punctuation stripping and lenient float array parsing as plain
// functions.
//
// All operations work on Unicode code points, so "你好" has length 2.
// The functions are stateless and safe for concurrent use. For thresholds,
// rounding, strict parsing or logging use pkg/similarity.Toolkit.
package stringsimilarity

import (
	"github.com/baditaflorin/go_string_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_string_similarity/internal/adapters/parser"
	"github.com/baditaflorin/go_string_similarity/internal/core/bestmatch"
	"github.com/baditaflorin/go_string_similarity/internal/core/distance"
	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
	"github.com/baditaflorin/go_string_similarity/internal/core/similarity"
)

// Policy selects the scoring method.
type Policy = domain.Policy

const (
	// Levenshtein scores 1 - distance/maxLength.
	Levenshtein = domain.PolicyLevenshtein
	// Jaccard scores the overlap of the unique characters of both texts.
	Jaccard = domain.PolicyJaccard
)

// ParsePolicy resolves a policy name. Unknown names return an error wrapping
// domain.ErrUnknownPolicy.
func ParsePolicy(name string) (Policy, error) {
	return domain.ParsePolicy(name)
}

// Similarity returns the similarity of a and b in [0, 1].
//
// Two empty texts score 0.0 under Levenshtein and 1.0 under Jaccard.
// An unknown policy scores 0.0.
func Similarity(policy Policy, a, b string) float64 {
	if !policy.Valid() {
		defaultLogger().Warn("Unknown similarity policy, scoring as zero", "policy", int(policy))
	}
	return similarity.Score(policy, a, b)
}

// FindBest returns the candidate with the highest similarity to query and its score.
// Ties keep the earliest candidate. If nothing scores above zero the first
// candidate is returned with score 0. An empty list returns ("", 0).
func FindBest(policy Policy, candidates []string, query string) (string, float64) {
	match := bestmatch.Find(policy, candidates, query)
	return match.Candidate, match.Score
}

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	return distance.Levenshtein(a, b)
}

// Normalize removes ASCII punctuation, ASCII whitespace and common CJK
// punctuation from text. Every other character is kept in order.
func Normalize(text string) string {
	return normalizer.Normalize(text)
}

// ParseFloatArray parses text such as "[1.0, 2.0]" into numbers.
//
// One layer of quotes and one layer of brackets are stripped before splitting
// on commas. Fields that are not numbers become 0. ok is false only when text
// is shorter than three characters.
func ParseFloatArray(text string) (ok bool, values []float64) {
	result := parser.ParseFloatArray(text)
	return result.OK, result.Values
}
