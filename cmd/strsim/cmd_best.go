package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/stream"
)

type rankedCandidate struct {
	Candidate string  `json:"candidate"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

func newBestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best QUERY CANDIDATE...",
		Short: "Find the candidate most similar to a query",
		Long: `Scores every candidate against the query and prints the best one.
Ties keep the earliest candidate. With --top N the N best candidates are listed instead.`,
		Example: `  strsim best cats cat dog cats
  strsim best --policy jaccard --top 2 cats cat dog cats
  strsim best --file products.txt "wireless mouse"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			original := args[1:]
			if path, _ := cmd.Flags().GetString("file"); path != "" {
				fromFile, err := readCandidates(cmd, path, s.cfg.Server.MaxCandidates)
				if err != nil {
					return err
				}
				original = append(original, fromFile...)
			}
			if len(original) > s.cfg.Server.MaxCandidates {
				return fmt.Errorf("too many candidates: %d (max %d)", len(original), s.cfg.Server.MaxCandidates)
			}

			query := s.prepare(args[0])
			candidates := make([]string, len(original))
			for i, c := range original {
				candidates[i] = s.prepare(c)
			}

			top, _ := cmd.Flags().GetInt("top")
			if top > 0 {
				ranking := []rankedCandidate{}
				for _, m := range s.toolkit.Rank(s.policy, candidates, query, top) {
					ranking = append(ranking, rankedCandidate{Candidate: original[m.Index], Index: m.Index, Score: m.Score})
				}
				return printResult(cmd, ranking, func(w io.Writer) {
					for i, r := range ranking {
						fmt.Fprintf(w, "%d. %s\t%g\n", i+1, r.Candidate, r.Score)
					}
				})
			}

			match, err := s.toolkit.FindBest(context.Background(), s.policy, candidates, query)
			if err != nil {
				return err
			}

			candidate := ""
			if match.Found {
				candidate = original[match.Index]
			}
			return printResult(cmd, map[string]interface{}{
				"candidate": candidate,
				"index":     match.Index,
				"score":     match.Score,
				"found":     match.Found,
			}, func(w io.Writer) {
				if !match.Found {
					fmt.Fprintln(w, "no candidates")
					return
				}
				fmt.Fprintf(w, "%s\t%g\n", candidate, match.Score)
			})
		},
	}

	cmd.Flags().String("policy", "", "Similarity policy: levenshtein or jaccard (default from config)")
	cmd.Flags().Int("top", 0, "List the N best candidates instead of only the best")
	cmd.Flags().String("file", "", "Read additional candidates from a file, one per line (- for stdin)")
	return cmd
}

func readCandidates(cmd *cobra.Command, path string, limit int) ([]string, error) {
	if path == "-" {
		return stream.ReadLines(cmd.Context(), cmd.InOrStdin(), limit)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening candidates file: %w", err)
	}
	defer f.Close()

	lines, err := stream.ReadLines(cmd.Context(), f, limit)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
