package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/config"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
	"github.com/baditaflorin/go_string_similarity/pkg/similarity"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "strsim",
		Short: "String similarity toolkit",
		Long: `strsim scores text similarity, picks the closest candidate to a query,
strips punctuation and parses loosely formatted number lists.

Policies: levenshtein (normalized edit distance) and jaccard (character overlap).`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("normalize", false, "Strip punctuation and whitespace before comparing")
	rootCmd.PersistentFlags().Bool("verbose", false, "Log to stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimilarityCmd(),
		newDistanceCmd(),
		newBestCmd(),
		newNormalizeCmd(),
		newParseCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(cmd, map[string]string{"version": version}, func(w io.Writer) {
				fmt.Fprintf(w, "strsim version %s\n", version)
			})
		},
	}
}

// session is the per-invocation state shared by subcommands.
type session struct {
	cfg       *config.Config
	toolkit   *similarity.Toolkit
	policy    similarity.Policy
	normalize bool
	log       ports.Logger
}

// openSession loads configuration and builds a toolkit. The caller must Close the session.
func openSession(cmd *cobra.Command, strict bool) (*session, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	if name, _ := cmd.Flags().GetString("policy"); name != "" {
		policy, err = similarity.ParsePolicy(name)
		if err != nil {
			return nil, err
		}
	}

	var log ports.Logger = logger.NewNopLogger()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		lc := logger.DefaultConfig(cmd.ErrOrStderr(), cfg.Logging.JSON)
		lc.AsyncWrite = false
		log, err = logger.NewCustomStdLogger(lc)
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	opts := []similarity.Option{
		similarity.WithPortLogger(log),
		similarity.WithThreshold(cfg.Similarity.Threshold),
		similarity.WithPrecision(cfg.Similarity.Precision),
		similarity.WithStrictParsing(strict || cfg.Parser.Strict),
	}
	if cfg.Similarity.Normalizer == "optimized" {
		opts = append(opts, similarity.WithOptimizedNormalizer())
	}

	toolkit, err := similarity.New(opts...)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	normalize, _ := cmd.Flags().GetBool("normalize")
	return &session{cfg: cfg, toolkit: toolkit, policy: policy, normalize: normalize, log: log}, nil
}

func (s *session) Close() error {
	_ = s.toolkit.Close()
	return s.log.Close()
}

// prepare applies --normalize to text.
func (s *session) prepare(text string) string {
	if s.normalize {
		return s.toolkit.Normalize(text)
	}
	return text
}

// printResult writes v as JSON when --json is set, otherwise calls text.
func printResult(cmd *cobra.Command, v interface{}, text func(w io.Writer)) error {
	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(cmd.OutOrStdout())
	return nil
}
