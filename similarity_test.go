package stringsimilarity

import (
	"bytes"
	"sync"
	"testing"

	"github.com/baditaflorin/l"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 3, Distance("kitten", "sitting"))
	assert.Equal(t, 0, Distance("", ""))
	assert.Equal(t, 5, Distance("", "hello"))
	assert.Equal(t, 1, Distance("你好", "你们好"))

	words := []string{"", "a", "ab", "flaw", "lawn", "kitten", "sitting", "你好世界"}
	for _, a := range words {
		assert.Equal(t, 0, Distance(a, a), "self distance of %q", a)
		for _, b := range words {
			assert.Equal(t, Distance(a, b), Distance(b, a), "symmetry of %q and %q", a, b)
			for _, c := range words {
				assert.LessOrEqual(t, Distance(a, c), Distance(a, b)+Distance(b, c))
			}
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		a, b     string
		expected float64
	}{
		{name: "levenshtein empty", policy: Levenshtein, a: "", b: "", expected: 0.0},
		{name: "levenshtein identical", policy: Levenshtein, a: "abc", b: "abc", expected: 1.0},
		{name: "levenshtein one empty", policy: Levenshtein, a: "", b: "abc", expected: 0.0},
		{name: "jaccard empty", policy: Jaccard, a: "", b: "", expected: 1.0},
		{name: "jaccard identical", policy: Jaccard, a: "abc", b: "abc", expected: 1.0},
		{name: "jaccard disjoint", policy: Jaccard, a: "abc", b: "xyz", expected: 0.0},
		{name: "jaccard duplicates collapse", policy: Jaccard, a: "aabbcc", b: "abc", expected: 1.0},
		{name: "jaccard half", policy: Jaccard, a: "ab", b: "bc", expected: 1.0 / 3.0},
		{name: "unknown policy", policy: Policy(42), a: "abc", b: "abc", expected: 0.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Similarity(tc.policy, tc.a, tc.b), 1e-12)
		})
	}
}

func TestSimilarityRange(t *testing.T) {
	inputs := []string{"", "a", "kitten", "sitting", "你好，世界", "The quick brown fox"}
	for _, policy := range []Policy{Levenshtein, Jaccard} {
		for _, a := range inputs {
			for _, b := range inputs {
				score := Similarity(policy, a, b)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 1.0)
			}
		}
	}
}

func TestFindBest(t *testing.T) {
	best, score := FindBest(Levenshtein, []string{"cat", "dog", "cats"}, "cats")
	assert.Equal(t, "cats", best)
	assert.Equal(t, 1.0, score)

	best, score = FindBest(Levenshtein, nil, "q")
	assert.Empty(t, best)
	assert.Equal(t, 0.0, score)

	// Ties keep the first candidate.
	best, _ = FindBest(Jaccard, []string{"ab", "ba"}, "ab")
	assert.Equal(t, "ab", best)

	best, score = FindBest(Levenshtein, []string{"xyz", "uvw"}, "abc")
	assert.Equal(t, "xyz", best)
	assert.Equal(t, 0.0, score)
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Hello, World!  ":  "HelloWorld",
		"你好，世界！":           "你好世界",
		"":                 "",
		"already clean":    "alreadyclean",
		"《三体》——刘慈欣":        "三体刘慈欣",
		"tab\there\nline": "tabhereline",
	}
	for in, want := range tests {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestParseFloatArray(t *testing.T) {
	tests := []struct {
		in     string
		ok     bool
		values []float64
	}{
		{in: "[1.0, 2.0, 3.0]", ok: true, values: []float64{1, 2, 3}},
		{in: `"[1.0, 2.0]"`, ok: true, values: []float64{1, 2}},
		{in: "1.0, 2.0", ok: true, values: []float64{1, 2}},
		{in: "1.0,abc,3.0", ok: true, values: []float64{1, 0, 3}},
		{in: "1,,2", ok: true, values: []float64{1, 0, 2}},
		{in: "[]", ok: false},
		{in: "1", ok: false},
		{in: "", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			ok, values := ParseFloatArray(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.values, values)
			} else {
				assert.Empty(t, values)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("levenshtein")
	require.NoError(t, err)
	assert.Equal(t, Levenshtein, p)

	_, err = ParsePolicy("nope")
	assert.Error(t, err)
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := logger.DefaultConfig(&buf, true)
	cfg.AsyncWrite = false
	lg, err := l.NewStandardFactory().CreateLogger(cfg)
	require.NoError(t, err)

	SetLogger(lg)
	t.Cleanup(func() { SetLogger(nil) })

	assert.Equal(t, 0.0, Similarity(Policy(7), "a", "a"))
	require.NoError(t, lg.Close())
	assert.Contains(t, buf.String(), "Unknown similarity policy")
}

func TestConcurrentUse(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				assert.Equal(t, 3, Distance("kitten", "sitting"))
				assert.Equal(t, "你好世界", Normalize("你好，世界！"))
			}
		}()
	}
	wg.Wait()
}
