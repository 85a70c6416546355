package normalizer

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

var stripRemovable = runes.Remove(runes.Predicate(IsRemovable))

// DefaultNormalizer implements the default text normalization strategy.
type DefaultNormalizer struct{}

// NewDefaultNormalizer creates a new default normalizer.
func NewDefaultNormalizer() ports.Normalizer {
	return &DefaultNormalizer{}
}

// Normalize removes ASCII punctuation, ASCII whitespace and CJK punctuation,
// keeping every other character in order.
func (n *DefaultNormalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	result, _, err := transform.String(stripRemovable, text)
	if err != nil {
		// Keep the input on transformer errors.
		return text
	}
	return result
}

// Normalize strips text with the default normalizer.
func Normalize(text string) string {
	return (&DefaultNormalizer{}).Normalize(text)
}
