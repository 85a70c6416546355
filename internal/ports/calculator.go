package ports

import (
	"context"

	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
)

// SimilarityCalculator defines the interface for computing similarity between texts.
type SimilarityCalculator interface {
	Compute(ctx context.Context, first, second string) domain.Result
}
