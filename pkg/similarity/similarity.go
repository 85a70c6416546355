package similarity

import (
	"context"
	"sync/atomic"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_string_similarity/internal/adapters/parser"
	"github.com/baditaflorin/go_string_similarity/internal/core/bestmatch"
	"github.com/baditaflorin/go_string_similarity/internal/core/distance"
	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
	core "github.com/baditaflorin/go_string_similarity/internal/core/similarity"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
	"github.com/baditaflorin/go_string_similarity/internal/warmup"
	"github.com/baditaflorin/l"
)

// Policy selects how two texts are scored.
type Policy = domain.Policy

// Result, Match and FloatArray are the toolkit's value types.
type (
	Result     = domain.Result
	Match      = domain.Match
	FloatArray = domain.FloatArray
)

// WarmupConfig configures Toolkit warm-up.
type WarmupConfig = warmup.WarmupConfig

// Normalizer is implemented by custom normalizers passed to WithNormalizer.
type Normalizer = ports.Normalizer

// DefaultWarmupConfig returns the default warm-up configuration.
func DefaultWarmupConfig() WarmupConfig {
	return warmup.DefaultWarmupConfig()
}

const (
	// Levenshtein scores by normalized edit distance.
	Levenshtein = domain.PolicyLevenshtein
	// Jaccard scores by overlap of unique characters.
	Jaccard = domain.PolicyJaccard
	// NoRounding leaves scores unrounded.
	NoRounding = core.NoRounding
)

// ParsePolicy resolves a policy name such as "levenshtein" or "jaccard".
func ParsePolicy(name string) (Policy, error) {
	return domain.ParsePolicy(name)
}

// Toolkit bundles the similarity, best-match, normalization and parsing operations.
type Toolkit struct {
	calculator *core.Calculator
	finder     *bestmatch.Finder
	normalizer ports.Normalizer
	parser     *parser.Parser
	logger     ports.Logger
	ownsLogger bool
	warmed     atomic.Bool
}

// Option defines a functional option for configuring a Toolkit.
type Option func(*toolkitConfig)

type toolkitConfig struct {
	Threshold    float64
	Precision    int
	Logger       ports.Logger
	Normalizer   ports.Normalizer
	Strict       bool
	WarmUp       bool
	WarmUpConfig warmup.WarmupConfig
}

// WithThreshold sets the score at or above which a comparison passes.
func WithThreshold(th float64) Option {
	return func(cfg *toolkitConfig) {
		cfg.Threshold = th
	}
}

// WithPrecision rounds Compare scores to p decimal places. NoRounding disables rounding.
func WithPrecision(p int) Option {
	return func(cfg *toolkitConfig) {
		cfg.Precision = p
	}
}

// WithLogger sets a custom logger. A nil logger is ignored.
func WithLogger(l l.Logger) Option {
	return func(cfg *toolkitConfig) {
		if l == nil {
			return
		}
		cfg.Logger = logger.FromExisting(l)
	}
}

// WithPortLogger sets a logger implementing the internal logging interface directly.
func WithPortLogger(log ports.Logger) Option {
	return func(cfg *toolkitConfig) {
		cfg.Logger = log
	}
}

// WithNormalizer sets a custom normalizer.
func WithNormalizer(normalizer Normalizer) Option {
	return func(cfg *toolkitConfig) {
		cfg.Normalizer = normalizer
	}
}

// WithOptimizedNormalizer uses the pooled, table driven normalizer.
func WithOptimizedNormalizer() Option {
	return func(cfg *toolkitConfig) {
		normFactory := normalizer.NewNormalizerFactory()
		cfg.Normalizer = normFactory.CreateNormalizer(normalizer.OptimizedNormalizerType)
	}
}

// WithStrictParsing makes ParseFloatArray fail on fields that are not numbers.
func WithStrictParsing(strict bool) Option {
	return func(cfg *toolkitConfig) {
		cfg.Strict = strict
	}
}

// WithWarmUp enables system warm-up on initialization.
func WithWarmUp(enable bool) Option {
	return func(cfg *toolkitConfig) {
		cfg.WarmUp = enable
	}
}

// WithWarmUpConfig sets a custom warm-up configuration.
func WithWarmUpConfig(config WarmupConfig) Option {
	return func(cfg *toolkitConfig) {
		cfg.WarmUpConfig = config
		cfg.WarmUp = true
	}
}

// New creates a new Toolkit.
func New(opts ...Option) (*Toolkit, error) {
	// Default configuration
	defaultConfig := core.DefaultConfig()

	config := &toolkitConfig{
		Threshold:    defaultConfig.Threshold,
		Precision:    defaultConfig.Precision,
		WarmUpConfig: warmup.DefaultWarmupConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	// Set up logger if not provided
	ownsLogger := false
	if config.Logger == nil {
		var err error
		config.Logger, err = logger.NewStdLogger()
		if err != nil {
			return nil, err
		}
		ownsLogger = true
	}

	// Set up normalizer if not provided
	if config.Normalizer == nil {
		config.Normalizer = normalizer.NewDefaultNormalizer()
	}

	coreConfig := core.SimilarityConfig{
		Policy:    defaultConfig.Policy,
		Threshold: config.Threshold,
		Precision: config.Precision,
	}
	calculator, err := core.NewCalculator(coreConfig, config.Logger)
	if err != nil {
		if ownsLogger {
			_ = config.Logger.Close()
		}
		return nil, err
	}

	tk := &Toolkit{
		calculator: calculator,
		finder:     bestmatch.NewFinder(config.Logger),
		normalizer: config.Normalizer,
		parser:     parser.NewParser(config.Strict, config.Logger),
		logger:     config.Logger,
		ownsLogger: ownsLogger,
	}

	// Perform warm-up if configured
	if config.WarmUp {
		tk.WarmUp(context.Background(), config.WarmUpConfig)
	}

	return tk, nil
}

// Similarity returns the score of a against b in [0, 1].
// Unknown policies score 0.
func (tk *Toolkit) Similarity(policy Policy, a, b string) float64 {
	if !policy.Valid() {
		tk.logger.Warn("Unknown similarity policy, scoring as zero", "policy", int(policy))
	}
	return core.Score(policy, a, b)
}

// Compare scores a against b and reports details, threshold and rounding included.
func (tk *Toolkit) Compare(ctx context.Context, policy Policy, a, b string) Result {
	return tk.calculator.ComputeWithPolicy(ctx, policy, a, b)
}

// FindBest returns the candidate most similar to query. An empty list returns
// a Match with Found false. The error is non-nil only if ctx is cancelled.
func (tk *Toolkit) FindBest(ctx context.Context, policy Policy, candidates []string, query string) (Match, error) {
	return tk.finder.FindBest(ctx, policy, candidates, query)
}

// Rank returns up to n candidates ordered by descending score. n <= 0 returns all.
func (tk *Toolkit) Rank(policy Policy, candidates []string, query string, n int) []Match {
	return bestmatch.TopN(policy, candidates, query, n)
}

// Distance returns the Levenshtein edit distance between a and b.
func (tk *Toolkit) Distance(a, b string) int {
	return distance.Levenshtein(a, b)
}

// Normalize removes punctuation and whitespace from text.
func (tk *Toolkit) Normalize(text string) string {
	return tk.normalizer.Normalize(text)
}

// ParseFloatArray parses a textual list of numbers. In lenient mode the error
// is always nil and OK is false only for inputs shorter than three characters.
func (tk *Toolkit) ParseFloatArray(text string) (FloatArray, error) {
	return tk.parser.Parse(text)
}

// WarmUp performs system warm-up to optimize performance.
// Only the first call runs; concurrent and later calls return immediately.
func (tk *Toolkit) WarmUp(ctx context.Context, config WarmupConfig) {
	if !tk.warmed.CompareAndSwap(false, true) {
		tk.logger.Debug("System already warmed up, skipping")
		return
	}

	warmupMgr := warmup.NewManager(tk.logger, config)
	warmupMgr.RegisterCalculator(tk.calculator)
	warmupMgr.RegisterNormalizer(tk.normalizer)
	warmupMgr.RegisterParser(parser.NewParser(false, tk.logger))

	warmupMgr.WarmUp(ctx)
}

// Close releases the logger if the Toolkit created it.
func (tk *Toolkit) Close() error {
	if tk.ownsLogger {
		return tk.logger.Close()
	}
	return nil
}
