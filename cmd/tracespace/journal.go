package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/spf13/cobra"
)

func newJournalCmd(configPath *string) *cobra.Command {
	var (
		limit   int
		outcome string
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print recent refresh attempts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			journal, closeDB, err := openJournal(cfg.DB.Path, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			opts := refresh.ListOptions{Limit: limit}
			if outcome != "" {
				o := refresh.Outcome(outcome)
				opts.Outcome = &o
			}
			entries, err := journal.Recent(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", refresh.DefaultListLimit, "Maximum number of entries")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Only entries with this outcome (applied, fetch_error, malformed, stale)")
	return cmd
}

func printJournal(w io.Writer, entries []refresh.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no refreshes recorded")
		return
	}
	fmt.Fprintf(w, "%-6s %-12s %9s %8s  %s\n", "SEQ", "OUTCOME", "ORGANISMS", "MS", "WHEN")
	for _, e := range entries {
		fmt.Fprintf(w, "%-6d %-12s %9d %8d  %s\n", e.Seq, e.Outcome, e.OrganismCount, e.DurationMS, humanize.Time(e.CreatedAt))
		if e.Error != "" {
			fmt.Fprintf(w, "       %s\n", e.Error)
		}
	}
}
