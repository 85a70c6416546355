package warmup

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

// WarmupConfig defines configuration for warming up the system
type WarmupConfig struct {
	// Number of concurrent warmup routines to run
	Concurrency int
	// Number of iterations per routine
	Iterations int
	// Sample text size for warmup, in bytes. Edit distance is quadratic, keep it small.
	SampleTextSize int
	// Warmup duration (0 means no time limit)
	Duration time.Duration
	// Whether to perform GC after warmup
	ForceGC bool
}

// DefaultWarmupConfig returns the default warmup configuration
func DefaultWarmupConfig() WarmupConfig {
	return WarmupConfig{
		Concurrency:    runtime.NumCPU(),
		Iterations:     200,
		SampleTextSize: 120,
		Duration:       2 * time.Second,
		ForceGC:        true,
	}
}

// Manager handles system warmup operations
type Manager struct {
	logger      ports.Logger
	calculators []ports.SimilarityCalculator
	normalizers []ports.Normalizer
	parsers     []ports.ArrayParser
	config      WarmupConfig
}

// Stats reports how many operations each component group executed.
type Stats struct {
	Normalizations int64
	Comparisons    int64
	Parses         int64
	Duration       time.Duration
}

// NewManager creates a new warmup manager
func NewManager(logger ports.Logger, config WarmupConfig) *Manager {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &Manager{
		logger: logger,
		config: config,
	}
}

// RegisterCalculator adds a calculator to be warmed up
func (wm *Manager) RegisterCalculator(calc ports.SimilarityCalculator) {
	wm.calculators = append(wm.calculators, calc)
}

// RegisterNormalizer adds a normalizer to be warmed up
func (wm *Manager) RegisterNormalizer(norm ports.Normalizer) {
	wm.normalizers = append(wm.normalizers, norm)
}

// RegisterParser adds an array parser to be warmed up
func (wm *Manager) RegisterParser(parser ports.ArrayParser) {
	wm.parsers = append(wm.parsers, parser)
}

// WarmUp runs the warmup process for all registered components
func (wm *Manager) WarmUp(ctx context.Context) Stats {
	startTime := time.Now()
	wm.logger.Info("Starting system warmup",
		"components", len(wm.calculators)+len(wm.normalizers)+len(wm.parsers),
		"concurrency", wm.config.Concurrency,
		"iterations", wm.config.Iterations,
	)

	// Create a context with timeout if duration is specified
	warmupCtx := ctx
	if wm.config.Duration > 0 {
		var cancel context.CancelFunc
		warmupCtx, cancel = context.WithTimeout(ctx, wm.config.Duration)
		defer cancel()
	}

	var stats Stats
	stats.Normalizations = wm.warmUpNormalizers(warmupCtx)
	stats.Comparisons = wm.warmUpCalculators(warmupCtx)
	stats.Parses = wm.warmUpParsers(warmupCtx)

	// Force garbage collection if configured
	if wm.config.ForceGC {
		wm.logger.Debug("Forcing garbage collection after warmup")
		runtime.GC()
	}

	stats.Duration = time.Since(startTime)
	wm.logger.Info("System warmup completed",
		"duration", stats.Duration,
		"normalizations", stats.Normalizations,
		"comparisons", stats.Comparisons,
		"parses", stats.Parses,
	)
	return stats
}

// run executes fn Iterations times on Concurrency goroutines and returns the call count.
func (wm *Manager) run(ctx context.Context, fn func(iteration int)) int64 {
	var (
		wg    sync.WaitGroup
		total atomic.Int64
	)
	for i := 0; i < wm.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < wm.config.Iterations; j++ {
				// Check for context cancellation
				select {
				case <-ctx.Done():
					return
				default:
					// Continue
				}
				fn(j)
				total.Add(1)
			}
		}()
	}
	wg.Wait()
	return total.Load()
}

// warmUpNormalizers runs warmup for all registered normalizers
func (wm *Manager) warmUpNormalizers(ctx context.Context) int64 {
	if len(wm.normalizers) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up normalizers", "count", len(wm.normalizers))

	sampleText := generateSampleText(wm.config.SampleTextSize)
	return wm.run(ctx, func(int) {
		for _, normalizer := range wm.normalizers {
			_ = normalizer.Normalize(sampleText)
		}
	}) * int64(len(wm.normalizers))
}

// warmUpCalculators runs warmup for all registered calculators
func (wm *Manager) warmUpCalculators(ctx context.Context) int64 {
	if len(wm.calculators) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up calculators", "count", len(wm.calculators))

	// Generate sample texts of different similarity levels
	original := generateSampleText(wm.config.SampleTextSize)
	similar := generateSimilarText(original, 0.1)   // 10% difference
	different := generateSimilarText(original, 0.5) // 50% difference

	return wm.run(ctx, func(j int) {
		for _, calculator := range wm.calculators {
			// Alternate between different similarity levels
			switch j % 3 {
			case 0:
				_ = calculator.Compute(ctx, original, original)
			case 1:
				_ = calculator.Compute(ctx, original, similar)
			default:
				_ = calculator.Compute(ctx, original, different)
			}
		}
	}) * int64(len(wm.calculators))
}

// warmUpParsers runs warmup for all registered array parsers
func (wm *Manager) warmUpParsers(ctx context.Context) int64 {
	if len(wm.parsers) == 0 {
		return 0
	}

	wm.logger.Debug("Warming up parsers", "count", len(wm.parsers))

	samples := []string{`"[1.0, 2.0, 3.0]"`, "[0.5, -1, 2e3]", "1, 2, 3, 4, 5"}
	return wm.run(ctx, func(j int) {
		for _, parser := range wm.parsers {
			_, _ = parser.Parse(samples[j%len(samples)])
		}
	}) * int64(len(wm.parsers))
}

// Helper functions for generating test data

// generateSampleText creates sample text of the specified size
func generateSampleText(size int) string {
	// Sample words to use in generating text, including CJK and punctuation
	words := []string{
		"the", "quick", "brown", "fox,", "jumps", "over", "lazy", "dog.",
		"你好", "世界！", "lorem", "ipsum", "dolor", "《三体》", "amet", "consectetur",
	}

	var sb strings.Builder
	for i := 0; sb.Len() < size; i++ {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(words[i%len(words)])
	}
	return sb.String()
}

// generateSimilarText creates a text similar to the original with the specified difference ratio
func generateSimilarText(original string, diffRatio float64) string {
	words := strings.Fields(original)

	// Number of words to change
	changeCount := int(float64(len(words)) * diffRatio)

	// Replacement words
	replacements := []string{
		"replaced", "modified", "changed", "altered", "updated",
		"different", "unique", "new", "fresh", "novel",
	}

	// Copy the original words
	newWords := make([]string, len(words))
	copy(newWords, words)

	for i := 0; i < changeCount && i < len(newWords); i++ {
		newWords[i] = replacements[i%len(replacements)]
	}

	return strings.Join(newWords, " ")
}
