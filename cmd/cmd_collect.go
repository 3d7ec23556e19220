// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcodagnone/dialaddr/flow"
	"github.com/spf13/cobra"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the address collection dialog on the terminal",
	Long: `Plays the bot side of the "collect address" step: reads one address per line,
validates it and asks again until an address is accepted or the attempts run
out. The stored address is printed as JSON at the end.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		step := flow.NewAddressStep(a.checker, a.cfg.MaxAttempts, &logger)
		interactive := isTerminal(cmd.InOrStdin())

		res, err := collect(cmd.Context(), step, cmd.InOrStdin(), cmd.OutOrStdout(), interactive)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(res)
	},
}

var errNoAddress = errors.New("input ended before an address was collected")

// collect feeds lines from in to step until it is done. Prompts are only
// written when interactive.
func collect(ctx context.Context, step *flow.AddressStep, in io.Reader, out io.Writer, interactive bool) (flow.StepResult, error) {
	say := func(s string) {
		if interactive {
			fmt.Fprintf(out, "%s\n> ", s)
		}
	}

	say(flow.InitialPrompt)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			say(flow.InitialPrompt)

			continue
		}

		res := step.Submit(ctx, line)
		if res.Done {
			if interactive {
				fmt.Fprintln(out)
			}

			return res, nil
		}

		say(res.Reprompt)
	}

	if err := scanner.Err(); err != nil {
		return flow.StepResult{}, fmt.Errorf("reading input: %w", err)
	}

	return flow.StepResult{}, errNoAddress
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
