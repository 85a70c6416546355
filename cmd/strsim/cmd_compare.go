package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newSimilarityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similarity A B",
		Short: "Score the similarity of two texts",
		Example: `  strsim similarity kitten sitting
  strsim similarity --policy jaccard abc abd`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			result := s.toolkit.Compare(context.Background(), s.policy, s.prepare(args[0]), s.prepare(args[1]))

			return printResult(cmd, map[string]interface{}{
				"policy":        result.Policy.String(),
				"score":         result.Score,
				"passed":        result.Passed,
				"threshold":     result.Threshold,
				"distance":      result.Distance,
				"first_length":  result.FirstLength,
				"second_length": result.SecondLength,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %g (threshold %g, passed %t)\n",
					result.Policy, result.Score, result.Threshold, result.Passed)
			})
		},
	}

	cmd.Flags().String("policy", "", "Similarity policy: levenshtein or jaccard (default from config)")
	return cmd
}

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance A B",
		Short: "Print the Levenshtein edit distance of two texts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			d := s.toolkit.Distance(s.prepare(args[0]), s.prepare(args[1]))
			return printResult(cmd, map[string]int{"distance": d}, func(w io.Writer) {
				fmt.Fprintln(w, d)
			})
		},
	}
}
