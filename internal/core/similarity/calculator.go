package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
)

// NoRounding disables rounding of computed scores.
const NoRounding = -1

// SimilarityConfig holds configuration for the similarity calculator.
type SimilarityConfig struct {
	Policy    domain.Policy
	Threshold float64
	// Precision is the number of decimal places scores are rounded to, or NoRounding.
	Precision int
}

// DefaultConfig returns a default configuration.
func DefaultConfig() SimilarityConfig {
	return SimilarityConfig{
		Policy:    domain.PolicyLevenshtein,
		Threshold: 0.7,
		Precision: NoRounding,
	}
}

// Validate checks if the configuration is valid.
func (c SimilarityConfig) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("threshold must be between 0 and 1")
	}
	if c.Precision < NoRounding || c.Precision > 15 {
		return errors.New("precision must be between -1 and 15")
	}
	if !c.Policy.Valid() {
		return fmt.Errorf("policy %d: %w", c.Policy, domain.ErrUnknownPolicy)
	}
	return nil
}

// Calculator scores pairs of texts under a fixed policy.
type Calculator struct {
	config SimilarityConfig
	logger ports.Logger
}

var _ ports.SimilarityCalculator = (*Calculator)(nil)

// NewCalculator creates a new similarity calculator.
func NewCalculator(config SimilarityConfig, logger ports.Logger) (*Calculator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Calculator{
		config: config,
		logger: logger,
	}, nil
}

// Config returns the calculator configuration.
func (c *Calculator) Config() SimilarityConfig {
	return c.config
}

// Compute scores first against second using the configured policy.
func (c *Calculator) Compute(ctx context.Context, first, second string) domain.Result {
	return c.ComputeWithPolicy(ctx, c.config.Policy, first, second)
}

// ComputeWithPolicy scores first against second using the given policy.
// An unknown policy yields a zero score and a warning rather than an error.
func (c *Calculator) ComputeWithPolicy(ctx context.Context, policy domain.Policy, first, second string) domain.Result {
	c.logger.Debug("Starting similarity computation",
		"policy", policy.String(),
		"first", first,
		"second", second,
	)

	details := make(map[string]interface{})
	name := policy.String() + "_similarity"

	// Check context cancellation.
	select {
	case <-ctx.Done():
		c.logger.Error("Computation cancelled", "error", ctx.Err())
		details["error"] = "computation cancelled"
		return domain.Result{
			Name:      name,
			Policy:    policy,
			Distance:  -1,
			Threshold: c.config.Threshold,
			Details:   details,
		}
	default:
		// continue
	}

	firstLen := utf8.RuneCountInString(first)
	secondLen := utf8.RuneCountInString(second)

	var score float64
	dist := -1
	switch policy {
	case domain.PolicyLevenshtein:
		score, dist = levenshteinScore(first, second)
		details["max_length"] = max(firstLen, secondLen)
	case domain.PolicyJaccard:
		score = Jaccard(first, second)
	default:
		c.logger.Warn("Unknown similarity policy, scoring as zero", "policy", int(policy))
		details["error"] = "unknown policy"
	}

	if c.config.Precision != NoRounding {
		factor := math.Pow(10, float64(c.config.Precision))
		score = math.Round(score*factor) / factor
	}

	passed := policy.Valid() && score >= c.config.Threshold

	details["first_length"] = firstLen
	details["second_length"] = secondLen
	details["threshold"] = c.config.Threshold

	c.logger.Debug("Computed similarity",
		"policy", policy.String(),
		"score", score,
		"passed", passed,
		"distance", dist,
	)

	return domain.Result{
		Name:         name,
		Policy:       policy,
		Score:        score,
		Passed:       passed,
		Threshold:    c.config.Threshold,
		Distance:     dist,
		FirstLength:  firstLen,
		SecondLength: secondLen,
		Details:      details,
	}
}
