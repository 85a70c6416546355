// Package bestmatch selects the candidate most similar to a query.
package bestmatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
	"github.com/baditaflorin/go_string_similarity/internal/core/similarity"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

// Find scans candidates in order and returns the highest scoring one.
// Ties keep the earliest candidate. When no candidate scores above zero the
// first candidate is returned with a zero score. An empty list yields domain.NoMatch.
func Find(policy domain.Policy, candidates []string, query string) domain.Match {
	if len(candidates) == 0 {
		return domain.NoMatch()
	}

	best := domain.Match{Candidate: candidates[0], Index: 0, Found: true}
	for i, candidate := range candidates {
		if score := similarity.Score(policy, candidate, query); score > best.Score {
			best.Candidate = candidate
			best.Index = i
			best.Score = score
		}
	}
	return best
}

// TopN returns up to n candidates ordered by descending score, earliest first on ties.
// n <= 0 returns every candidate.
func TopN(policy domain.Policy, candidates []string, query string, n int) []domain.Match {
	ranked := make([]domain.Match, len(candidates))
	for i, candidate := range candidates {
		ranked[i] = domain.Match{
			Candidate: candidate,
			Index:     i,
			Score:     similarity.Score(policy, candidate, query),
			Found:     true,
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Finder runs best-match searches with logging and cancellation support.
type Finder struct {
	logger ports.Logger
}

// NewFinder creates a new Finder.
func NewFinder(logger ports.Logger) *Finder {
	return &Finder{logger: logger}
}

// FindBest behaves like Find but stops early when ctx is cancelled.
func (f *Finder) FindBest(ctx context.Context, policy domain.Policy, candidates []string, query string) (domain.Match, error) {
	f.logger.Debug("Starting best match search",
		"policy", policy.String(),
		"candidates", len(candidates),
		"query", query,
	)

	if len(candidates) == 0 {
		f.logger.Debug("Empty candidate list, no match")
		return domain.NoMatch(), nil
	}
	if !policy.Valid() {
		f.logger.Warn("Unknown similarity policy, every candidate scores zero", "policy", int(policy))
	}

	best := domain.Match{Candidate: candidates[0], Index: 0, Found: true}
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			f.logger.Error("Best match search cancelled", "error", ctx.Err(), "scanned", i)
			return domain.NoMatch(), fmt.Errorf("best match search cancelled after %d candidates: %w", i, ctx.Err())
		default:
		}

		if score := similarity.Score(policy, candidate, query); score > best.Score {
			best.Candidate = candidate
			best.Index = i
			best.Score = score
		}
	}

	f.logger.Debug("Computed best match",
		"candidate", best.Candidate,
		"index", best.Index,
		"score", best.Score,
	)
	return best, nil
}
