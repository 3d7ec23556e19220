// Copyright 2025 The DialAddr Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jcodagnone/dialaddr/address"
	"github.com/jcodagnone/dialaddr/journal"
	"github.com/jcodagnone/dialaddr/utils/textutils"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect the validation journal",
}

var journalListOptions struct {
	status string
	limit  int
	offset int
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled validations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var status *address.Status

		if journalListOptions.status != "" {
			st, ok := address.ParseStatus(journalListOptions.status)
			if !ok {
				return fmt.Errorf("unknown status %q", journalListOptions.status)
			}

			status = &st
		}

		db, repo, err := openJournal(settings.GetString("db_path"), false)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := repo.List(cmd.Context(), status, journalListOptions.limit, journalListOptions.offset)
		if err != nil {
			return err
		}

		return printEntries(cmd.OutOrStdout(), entries)
	},
}

func printEntries(out io.Writer, entries []*journal.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tQUERY\tRESULT")

	for _, e := range entries {
		result := e.FormattedAddress
		if e.Status == address.StatusInvalid {
			result = e.ErrorMessage
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Status, e.Query, result)
	}

	return w.Flush()
}

var journalStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count journaled validations per outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := openJournal(settings.GetString("db_path"), false)
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := repo.Stats(cmd.Context())
		if err != nil {
			return err
		}

		printStats(cmd.OutOrStdout(), stats)

		return nil
	},
}

func printStats(out io.Writer, stats map[address.Status]int) {
	var total int

	for _, st := range []address.Status{address.StatusValid, address.StatusInvalid, address.StatusServiceUnavailable} {
		fmt.Fprintf(out, "%-20s %10s\n", st, textutils.FormatInt(int64(stats[st])))
		total += stats[st]
	}

	fmt.Fprintf(out, "%-20s %10s\n", "total", textutils.FormatInt(int64(total)))
}

func init() {
	journalListCmd.Flags().StringVar(&journalListOptions.status, "status", "", "Only list entries with this outcome")
	journalListCmd.Flags().IntVar(&journalListOptions.limit, "limit", 50, "Maximum number of entries")
	journalListCmd.Flags().IntVar(&journalListOptions.offset, "offset", 0, "Entries to skip")

	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalStatsCmd)
	rootCmd.AddCommand(journalCmd)
}
