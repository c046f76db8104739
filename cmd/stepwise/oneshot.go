package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/ehrlich-b/stepwise/internal/demo"
	"github.com/ehrlich-b/stepwise/internal/llm"
	"github.com/spf13/cobra"
)

func consensusCmd(a *app) *cobra.Command {
	var (
		n           int
		temperature float32
	)
	cmd := &cobra.Command{
		Use:   "consensus <question>",
		Short: "Sample several answers and report the most consistent one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.NewProvider(a.cfg)
			if err != nil {
				return err
			}
			choices, err := demo.Consensus(cmd.Context(), provider, strings.Join(args, " "), n, temperature)
			if err != nil {
				return err
			}
			for i, c := range choices {
				fmt.Printf("Answer %d:\n%s\n\n", i+1, strings.TrimSpace(c))
			}
			votes := demo.Tally(choices)
			if len(votes) == 0 {
				ancli.PrintWarn("no sample stated a best answer\n")
				return nil
			}
			ancli.PrintOK(fmt.Sprintf("consensus: %s (%d of %d samples)\n", votes[0].Answer, votes[0].Count, len(choices)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "samples", "n", 5, "Number of samples")
	cmd.Flags().Float32Var(&temperature, "temperature", 0.7, "Sampling temperature")
	return cmd
}

func symptomsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms <symptom, symptom, ...>",
		Short: "One-shot disease guess from a list of symptoms",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := llm.NewProvider(a.cfg)
			if err != nil {
				return err
			}
			diagnosis, err := demo.Classify(cmd.Context(), provider, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(diagnosis)
			return nil
		},
	}
}

func tokenizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokenize [text]",
		Short: "Print the decimal+hex token of every character (reads stdin without args)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				fmt.Println(strings.Join(demo.Tokenize(strings.Join(args, " ")), " "))
				return nil
			}
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				fmt.Println(strings.Join(demo.Tokenize(scanner.Text()), " "))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		},
	}
}
