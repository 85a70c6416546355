package bestmatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
)

func TestFind(t *testing.T) {
	tests := []struct {
		name       string
		policy     domain.Policy
		candidates []string
		query      string
		want       domain.Match
	}{
		{
			name:       "empty list",
			policy:     domain.PolicyLevenshtein,
			candidates: nil,
			query:      "q",
			want:       domain.NoMatch(),
		},
		{
			name:       "exact match wins",
			policy:     domain.PolicyLevenshtein,
			candidates: []string{"cat", "dog", "cats"},
			query:      "cats",
			want:       domain.Match{Candidate: "cats", Index: 2, Score: 1.0, Found: true},
		},
		{
			name:       "ties keep the earliest",
			policy:     domain.PolicyJaccard,
			candidates: []string{"ba", "ab", "abab"},
			query:      "ab",
			want:       domain.Match{Candidate: "ba", Index: 0, Score: 1.0, Found: true},
		},
		{
			name:       "nothing similar returns first with zero",
			policy:     domain.PolicyJaccard,
			candidates: []string{"xyz", "uvw"},
			query:      "abc",
			want:       domain.Match{Candidate: "xyz", Index: 0, Score: 0, Found: true},
		},
		{
			name:       "unknown policy returns first with zero",
			policy:     domain.Policy(5),
			candidates: []string{"abc", "q"},
			query:      "q",
			want:       domain.Match{Candidate: "abc", Index: 0, Score: 0, Found: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Find(tc.policy, tc.candidates, tc.query))
		})
	}
}

func TestTopN(t *testing.T) {
	candidates := []string{"cat", "dog", "cats", "cast"}

	ranked := TopN(domain.PolicyLevenshtein, candidates, "cats", 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "cats", ranked[0].Candidate)
	assert.Equal(t, 1.0, ranked[0].Score)
	assert.Equal(t, "cat", ranked[1].Candidate)
	assert.Equal(t, 0, ranked[1].Index)
	assert.Equal(t, 0.75, ranked[1].Score)

	all := TopN(domain.PolicyLevenshtein, candidates, "cats", 0)
	require.Len(t, all, 4)
	assert.Equal(t, "cast", all[2].Candidate)
	assert.Equal(t, "dog", all[3].Candidate)

	// Equal scores keep input order.
	tied := TopN(domain.PolicyJaccard, []string{"ba", "ab"}, "ab", 0)
	require.Len(t, tied, 2)
	assert.Equal(t, "ba", tied[0].Candidate)
	assert.Equal(t, "ab", tied[1].Candidate)

	assert.Empty(t, TopN(domain.PolicyJaccard, nil, "q", 3))
}

func TestFinderFindBest(t *testing.T) {
	finder := NewFinder(logger.NewNopLogger())

	match, err := finder.FindBest(context.Background(), domain.PolicyLevenshtein, []string{"cat", "dog", "cats"}, "cats")
	require.NoError(t, err)
	assert.Equal(t, Find(domain.PolicyLevenshtein, []string{"cat", "dog", "cats"}, "cats"), match)

	match, err = finder.FindBest(context.Background(), domain.PolicyJaccard, []string{}, "q")
	require.NoError(t, err)
	assert.False(t, match.Found)
	assert.Equal(t, -1, match.Index)
	assert.Empty(t, match.Candidate)
}

func TestFinderFindBestCancelled(t *testing.T) {
	finder := NewFinder(logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	match, err := finder.FindBest(ctx, domain.PolicyLevenshtein, []string{"a", "b"}, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, match.Found)
}
