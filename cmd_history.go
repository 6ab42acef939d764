package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"wwrando/pkg/game/history"
)

type historyFlags struct {
	db      string
	hash    string
	runID   string
	spoiler string
}

func newHistoryCmd(a *app) *cobra.Command {
	f := &historyFlags{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query recorded seeds",
		Long: `History looks up seeds recorded with --history: every seed of a run,
or every seed that produced a placement hash. With --spoiler the stored
spoiler log of that seed is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (f.hash == "") == (f.runID == "") {
				return errors.New("exactly one of --hash and --run is required")
			}
			store, err := history.Open(f.db)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var entries []history.Entry
			if f.hash != "" {
				entries, err = store.FindHash(ctx, f.hash)
			} else {
				entries, err = store.Entries(ctx, f.runID)
			}
			if err != nil {
				return err
			}

			if f.spoiler != "" {
				for _, e := range entries {
					if e.Seed == f.spoiler {
						_, err := out.Write(e.Spoiler)
						return err
					}
				}
				return fmt.Errorf("seed %q not found", f.spoiler)
			}

			printEntries(out, entries)
			if f.runID != "" {
				failures, err := store.Failures(ctx, f.runID)
				if err != nil {
					return err
				}
				printFailures(out, failures)
			}
			a.logMessage("%d seeds", len(entries))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.db, "db", "wwrando.db", "SQLite database written by --history")
	cmd.Flags().StringVar(&f.hash, "hash", "", "List seeds with this placement hash")
	cmd.Flags().StringVar(&f.runID, "run", "", "List seeds of this run")
	cmd.Flags().StringVar(&f.spoiler, "spoiler", "", "Print the stored spoiler log of this seed")
	return cmd
}

func printEntries(out io.Writer, entries []history.Entry) {
	for _, e := range entries {
		status := "ok"
		if !e.OK {
			status = "failed: " + e.Error
		}
		fmt.Fprintf(out, "%s\t%s\t%s\tbuilds=%d fills=%d warnings=%d %s\n",
			e.Seed, e.Hash, e.Duration, e.BuildAttempts, e.FillAttempts, e.Warnings, status)
	}
}

func printFailures(out io.Writer, failures map[string]int) {
	msgs := make([]string, 0, len(failures))
	for msg := range failures {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	for _, msg := range msgs {
		fmt.Fprintf(out, "%dx %s\n", failures[msg], msg)
	}
}
