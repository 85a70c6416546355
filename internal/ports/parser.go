package ports

import "github.com/baditaflorin/go_string_similarity/internal/core/domain"

// ArrayParser defines the interface for turning a textual list into numbers.
type ArrayParser interface {
	Parse(text string) (domain.FloatArray, error)
}
