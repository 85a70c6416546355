// Package stream applies the toolkit to line oriented input such as stdin or
// candidate files.
package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/baditaflorin/go_string_similarity/internal/pool"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

const (
	// DefaultMaxLineSize is the longest line accepted, in bytes.
	DefaultMaxLineSize = 1024 * 1024

	// ContextCheckFrequency defines how often to check for context cancellation
	ContextCheckFrequency = 500 // lines
)

// Stats reports what a LineNormalizer consumed and produced.
type Stats struct {
	Lines    int
	BytesIn  int64
	BytesOut int64
}

// LineNormalizer normalizes a reader line by line.
type LineNormalizer struct {
	logger      ports.Logger
	normalizer  ports.Normalizer
	bufferPool  *pool.BufferPool
	maxLineSize int
}

// NewLineNormalizer creates a LineNormalizer. maxLineSize <= 0 selects DefaultMaxLineSize.
func NewLineNormalizer(logger ports.Logger, normalizer ports.Normalizer, maxLineSize int) *LineNormalizer {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}
	return &LineNormalizer{
		logger:      logger,
		normalizer:  normalizer,
		bufferPool:  pool.NewBufferPool(min(64*1024, maxLineSize)),
		maxLineSize: maxLineSize,
	}
}

// Process writes the normalized form of every line of r to w, one per line.
func (n *LineNormalizer) Process(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	buf := n.bufferPool.Get()
	defer n.bufferPool.Put(buf)

	scanner := bufio.NewScanner(r)
	scanner.Buffer((*buf)[:cap(*buf)], n.maxLineSize)

	bw := bufio.NewWriter(w)
	for scanner.Scan() {
		if stats.Lines%ContextCheckFrequency == 0 {
			if err := ctx.Err(); err != nil {
				n.logger.Warn("Line normalization cancelled", "lines", stats.Lines, "error", err)
				return stats, err
			}
		}

		line := scanner.Text()
		out := n.normalizer.Normalize(line)

		stats.Lines++
		stats.BytesIn += int64(len(line)) + 1
		stats.BytesOut += int64(len(out)) + 1

		if _, err := bw.WriteString(out); err != nil {
			return stats, fmt.Errorf("writing line %d: %w", stats.Lines, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return stats, fmt.Errorf("writing line %d: %w", stats.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading line %d: %w", stats.Lines+1, err)
	}
	if err := bw.Flush(); err != nil {
		return stats, err
	}

	n.logger.Debug("Line normalization completed",
		"lines", stats.Lines,
		"bytes_in", stats.BytesIn,
		"bytes_out", stats.BytesOut,
	)
	return stats, nil
}

// ReadLines returns the non-empty lines of r. It fails once more than maxLines
// lines were read, maxLines <= 0 means no limit.
func ReadLines(ctx context.Context, r io.Reader, maxLines int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), DefaultMaxLineSize)

	var lines []string
	for scanner.Scan() {
		if len(lines)%ContextCheckFrequency == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		if maxLines > 0 && len(lines) == maxLines {
			return nil, fmt.Errorf("more than %d lines", maxLines)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
