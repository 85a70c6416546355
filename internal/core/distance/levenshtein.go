// Package distance computes the Levenshtein edit distance between two texts.
//
// Texts are compared as sequences of Unicode code points, so a multi-byte
// character such as a CJK ideograph counts as a single edit.
package distance

import (
	"github.com/baditaflorin/go_string_similarity/internal/pool"
)

var (
	runePool  = pool.NewRuneBufferPool(64)
	tablePool = pool.NewIntBufferPool(1024)
)

// Levenshtein returns the minimum number of single-character insertions,
// deletions or substitutions needed to turn a into b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra := runePool.Get()
	rb := runePool.Get()
	defer runePool.Put(ra)
	defer runePool.Put(rb)

	*ra = appendRunes(*ra, a)
	*rb = appendRunes(*rb, b)

	return LevenshteinRunes(*ra, *rb)
}

// LevenshteinRunes is Levenshtein over already decoded code points.
func LevenshteinRunes(a, b []rune) int {
	m, n := len(a), len(b)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}
	if equalRunes(a, b) {
		return 0
	}

	// T is stored row-major: T[i][j] lives at i*cols+j.
	cols := n + 1
	table := tablePool.Get((m + 1) * cols)
	defer tablePool.Put(table)
	t := *table

	for i := 1; i <= m; i++ {
		t[i*cols] = i
	}
	for j := 1; j <= n; j++ {
		t[j] = j
	}

	for i := 1; i <= m; i++ {
		row := i * cols
		prev := row - cols
		for j := 1; j <= n; j++ {
			weight := 1
			if a[i-1] == b[j-1] {
				weight = 0
			}
			t[row+j] = min(t[prev+j]+1, t[row+j-1]+1, t[prev+j-1]+weight)
		}
	}

	return t[m*cols+n]
}

func appendRunes(dst []rune, s string) []rune {
	for _, r := range s {
		dst = append(dst, r)
	}
	return dst
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
