package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/stream"
)

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize TEXT",
		Short: "Remove ASCII and CJK punctuation and whitespace from text",
		Long: `Removes ASCII punctuation, ASCII whitespace and common CJK punctuation.
With "-" as TEXT every line of stdin is normalized separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if args[0] == "-" {
				ln := stream.NewLineNormalizer(s.log, s.toolkit, 0)
				_, err := ln.Process(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
				return err
			}

			out := s.toolkit.Normalize(args[0])
			return printResult(cmd, map[string]string{"text": out}, func(w io.Writer) {
				fmt.Fprintln(w, out)
			})
		},
	}
}

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse TEXT",
		Short: "Parse a list of numbers such as \"[1.0, 2.0]\"",
		Long: `Parses a comma separated list of numbers, optionally wrapped in brackets
and quotes. Fields that are not numbers become 0 unless --strict is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			s, err := openSession(cmd, strict)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.toolkit.ParseFloatArray(args[0])
			if err != nil {
				return err
			}

			formatted := make([]string, len(result.Values))
			for i, v := range result.Values {
				formatted[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}

			// JSON numbers cannot hold NaN or infinities.
			values := make([]interface{}, len(result.Values))
			for i, v := range result.Values {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					values[i] = formatted[i]
				} else {
					values[i] = v
				}
			}

			return printResult(cmd, map[string]interface{}{
				"ok":     result.OK,
				"values": values,
				"fields": result.Fields,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "ok=%t [%s]\n", result.OK, strings.Join(formatted, ", "))
			})
		},
	}

	cmd.Flags().Bool("strict", false, "Fail on fields that are not numbers")
	return cmd
}
