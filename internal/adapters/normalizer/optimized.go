package normalizer

import (
	"unicode/utf8"

	"github.com/baditaflorin/go_string_similarity/internal/pool"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

// OptimizedNormalizer implements the same removal rules as DefaultNormalizer
// with a precomputed ASCII table and pooled buffers.
type OptimizedNormalizer struct {
	// Pre-computed decision table for ASCII characters (0-127), true = remove
	asciiTable [utf8.RuneSelf]bool

	// Reusable buffer pool - only need one buffer type
	bytePool *pool.BufferPool
}

// NewOptimizedNormalizer creates a new optimized normalizer
func NewOptimizedNormalizer() ports.Normalizer {
	n := &OptimizedNormalizer{
		bytePool: pool.NewBufferPool(8192), // 8K bytes initial capacity
	}

	for i := 0; i < utf8.RuneSelf; i++ {
		n.asciiTable[i] = IsRemovable(rune(i))
	}

	return n
}

// Normalize removes punctuation and whitespace efficiently
func (n *OptimizedNormalizer) Normalize(text string) string {
	// Fast path for empty strings
	if len(text) == 0 {
		return ""
	}

	// Check for ASCII-only string first (optimization)
	asciiOnly := true
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			asciiOnly = false
			break
		}
	}

	// Get a reusable buffer from the pool
	buffer := n.bytePool.Get()
	defer n.bytePool.Put(buffer)

	// Ensure the buffer has adequate capacity
	if cap(*buffer) < len(text) {
		*buffer = make([]byte, 0, len(text))
	}
	*buffer = (*buffer)[:0] // Reset length while keeping capacity

	if asciiOnly {
		for i := 0; i < len(text); i++ {
			if b := text[i]; !n.asciiTable[b] {
				*buffer = append(*buffer, b)
			}
		}
		return string(*buffer)
	}

	// Slower path for mixed ASCII/Unicode strings
	for _, r := range text {
		if r < utf8.RuneSelf {
			if !n.asciiTable[r] {
				*buffer = append(*buffer, byte(r))
			}
			continue
		}
		if !IsCJKPunctuationOrSpace(r) {
			*buffer = utf8.AppendRune(*buffer, r)
		}
	}

	return string(*buffer)
}

// NormalizerFactory creates the appropriate normalizer based on performance requirements
type NormalizerFactory struct{}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory() *NormalizerFactory {
	return &NormalizerFactory{}
}

// Type of normalizer to create
type NormalizerType int

const (
	// DefaultNormalizerType removes characters through a golang.org/x/text transformer
	DefaultNormalizerType NormalizerType = iota
	// OptimizedNormalizerType uses buffer pooling and an ASCII lookup table
	OptimizedNormalizerType
)

// CreateNormalizer creates a normalizer of the specified type
func (f *NormalizerFactory) CreateNormalizer(normalizerType NormalizerType) ports.Normalizer {
	switch normalizerType {
	case OptimizedNormalizerType:
		return NewOptimizedNormalizer()
	default:
		return NewDefaultNormalizer()
	}
}
