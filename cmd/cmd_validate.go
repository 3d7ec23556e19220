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

	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/flow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [address...]",
	Short: "Validate addresses and print the outcome as JSON",
	Long: `Validates each argument as one address. Without arguments, every non empty
line of the standard input is validated. One JSON outcome is printed per
address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		inputs := args
		if len(inputs) == 0 {
			if inputs, err = readLines(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		return validateAll(cmd.Context(), a.checker, inputs, cmd.OutOrStdout())
	},
}

type validateOutput struct {
	Input string `json:"input"`
	address.Outcome

	Speech string `json:"speech,omitempty"`
}

func validateAll(ctx context.Context, v flow.Validator, inputs []string, out io.Writer) error {
	enc := json.NewEncoder(out)

	for _, in := range inputs {
		o := v.Validate(ctx, in)

		if err := enc.Encode(validateOutput{Input: in, Outcome: o, Speech: o.Speech()}); err != nil {
			return fmt.Errorf("writing outcome: %w", err)
		}
	}

	return nil
}

// readLines returns the non blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	if len(lines) == 0 {
		return nil, errors.New("no address given")
	}

	return lines, nil
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial address>",
	Short: "List address completions for a partial input",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		for _, s := range a.validator.Suggestions(cmd.Context(), strings.Join(args, " ")) {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}

		return nil
	},
}

var speakCmd = &cobra.Command{
	Use:   "speak <address>",
	Short: "Validate an address and print how the bot would read it back",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		o := a.checker.Validate(cmd.Context(), strings.Join(args, " "))
		fmt.Fprintln(cmd.OutOrStdout(), speakOutcome(o))

		return nil
	},
}

func speakOutcome(o address.Outcome) string {
	switch o.Status {
	case address.StatusValid:
		if s := o.Speech(); s != "" {
			return s
		}

		return o.FormattedAddress
	case address.StatusInvalid:
		return o.ErrorMessage
	default:
		return "The address could not be verified right now."
	}
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(speakCmd)
}
