// Package config provides configuration loading for the similarity server and CLI.
// It supports YAML files, an optional .env file and STRSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/baditaflorin/go_string_similarity/internal/core/domain"
)

// Config contains all toolkit configuration settings.
type Config struct {
	// Server contains settings for the HTTP server.
	Server ServerConfig `yaml:"server"`

	// Similarity contains scoring defaults.
	Similarity SimilarityConfig `yaml:"similarity"`

	// Parser contains float array parsing settings.
	Parser ParserConfig `yaml:"parser"`

	// Logging contains logger settings.
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxRequestSize int           `yaml:"max_request_size"`
	// Concurrency is the maximum number of concurrent requests, 0 means the fasthttp default.
	Concurrency int `yaml:"concurrency"`
	// MaxCandidates bounds best-match requests since each candidate costs O(m*n).
	MaxCandidates int `yaml:"max_candidates"`
	// MaxTextLength caps every compared text in runes; the edit-distance table grows with the product of two lengths.
	MaxTextLength int  `yaml:"max_text_length"`
	WarmUp        bool `yaml:"warm_up"`
	// RateLimit is the allowed requests per second, 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// SimilarityConfig configures default scoring behaviour.
type SimilarityConfig struct {
	// Policy is "levenshtein" or "jaccard".
	Policy    string  `yaml:"policy"`
	Threshold float64 `yaml:"threshold"`
	// Precision rounds scores to this many decimals, -1 disables rounding.
	Precision int `yaml:"precision"`
	// Normalizer is "default" or "optimized".
	Normalizer string `yaml:"normalizer"`
}

// ParserConfig configures float array parsing.
type ParserConfig struct {
	// Strict rejects fields that are not numbers instead of reading them as 0.
	Strict bool `yaml:"strict"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	JSON bool `yaml:"json"`
	// File is the log file path, empty means stdout.
	File string `yaml:"file"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxRequestSize: 10 * 1024 * 1024,
			MaxCandidates:  10000,
			MaxTextLength:  10000,
			WarmUp:         true,
			RateBurst:      100,
		},
		Similarity: SimilarityConfig{
			Policy:     domain.PolicyLevenshtein.String(),
			Threshold:  0.7,
			Precision:  -1,
			Normalizer: "default",
		},
		Logging: LoggingConfig{
			JSON: true,
		},
	}
}

// Load builds the configuration.
// Order: defaults -> .env file (if present) -> YAML file at path (if non-empty) -> environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	cfg := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileConfig
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// LoadFromFile loads configuration from a specific YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Policy resolves the configured policy name.
func (c *Config) Policy() (domain.Policy, error) {
	return domain.ParsePolicy(c.Similarity.Policy)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxRequestSize <= 0 {
		return fmt.Errorf("max_request_size must be positive, got %d", c.Server.MaxRequestSize)
	}
	if c.Server.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.Server.MaxCandidates)
	}
	if c.Server.MaxTextLength <= 0 {
		return fmt.Errorf("max_text_length must be positive, got %d", c.Server.MaxTextLength)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %f", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("rate_burst must be positive when rate_limit is set, got %d", c.Server.RateBurst)
	}
	if c.Similarity.Threshold < 0 || c.Similarity.Threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %f", c.Similarity.Threshold)
	}
	if c.Similarity.Precision < -1 || c.Similarity.Precision > 15 {
		return fmt.Errorf("precision must be between -1 and 15, got %d", c.Similarity.Precision)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Similarity.Normalizer {
	case "default", "optimized":
	default:
		return fmt.Errorf("invalid normalizer: %s (valid: default, optimized)", c.Similarity.Normalizer)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("STRSIM_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRSIM_PORT: %w", err)
		}
		cfg.Server.Port = n
	}
	if v := os.Getenv("STRSIM_MAX_CANDIDATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRSIM_MAX_CANDIDATES: %w", err)
		}
		cfg.Server.MaxCandidates = n
	}
	if v := os.Getenv("STRSIM_MAX_TEXT_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STRSIM_MAX_TEXT_LENGTH: %w", err)
		}
		cfg.Server.MaxTextLength = n
	}
	if v := os.Getenv("STRSIM_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STRSIM_RATE_LIMIT: %w", err)
		}
		cfg.Server.RateLimit = f
	}
	if v := os.Getenv("STRSIM_POLICY"); v != "" {
		cfg.Similarity.Policy = v
	}
	if v := os.Getenv("STRSIM_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STRSIM_THRESHOLD: %w", err)
		}
		cfg.Similarity.Threshold = f
	}
	if v := os.Getenv("STRSIM_NORMALIZER"); v != "" {
		cfg.Similarity.Normalizer = v
	}
	if v := os.Getenv("STRSIM_STRICT_PARSE"); v != "" {
		cfg.Parser.Strict = v == "true" || v == "1"
	}
	if v := os.Getenv("STRSIM_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	return nil
}
