package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docslice/internal/config"
	"github.com/dgallion1/docslice/internal/journal"
)

func newJournalCmd(configPath *string) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "journal [run-id]",
		Short: "List recorded runs, or the transitions of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				cfg, err := config.Load(*configPath)
				if err != nil {
					return err
				}
				path = cfg.Processing.Journal
			}
			if path == "" {
				return errors.New("no journal configured (set processing.journal or --path)")
			}

			store, err := journal.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 0 {
				return printRuns(cmd.OutOrStdout(), store)
			}
			return printEntries(cmd.OutOrStdout(), store, args[0])
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "journal database (default from config)")
	return cmd
}

func printRuns(w io.Writer, store *journal.Store) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}
	for _, id := range runs {
		entries, err := store.Entries(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d transitions\n", id, len(entries))
	}
	return nil
}

func printEntries(w io.Writer, store *journal.Store, runID string) error {
	entries, err := store.Entries(runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("run %q not found", runID)
	}
	for _, e := range entries {
		line := fmt.Sprintf("%d\t%s\t%s\t%s -> %s", e.Seq, e.At.Format(time.RFC3339), e.File, e.From, e.To)
		if e.Error != "" {
			line += "\t" + e.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
