package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/history"
	"wwrando/pkg/game/renderer"
	"wwrando/pkg/game/state"
)

type massFlags struct {
	base        string
	count       int
	workers     int
	historyPath string
}

func newMassTestCmd(a *app) *cobra.Command {
	f := &massFlags{}
	cmd := &cobra.Command{
		Use:   "mass-test",
		Short: "Generate many seeds and summarize the failures",
		Long: `Mass-test generates --count seeds named <seed>-0, <seed>-1, ... in
parallel and reports how many could not be generated and why. It exits
non-zero when any seed failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMassTest(cmd.Context(), a, f)
		},
	}
	cmd.Flags().StringVarP(&f.base, "seed", "s", "", "Base seed (default: random)")
	cmd.Flags().IntVarP(&f.count, "count", "n", 100, "Number of seeds")
	cmd.Flags().IntVarP(&f.workers, "workers", "j", runtime.NumCPU(), "Seeds generated at once")
	cmd.Flags().StringVar(&f.historyPath, "history", "", "Record every seed in this SQLite database")
	return cmd
}

func runMassTest(ctx context.Context, a *app, f *massFlags) error {
	if f.count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", f.count)
	}
	opts, err := a.options()
	if err != nil {
		return err
	}
	if f.base == "" {
		f.base = generator.NewSeed()
	}
	a.run.Seed = f.base
	a.run.Advance(state.PhaseGenerating)

	results, err := generator.MassTest(ctx, opts, f.base, f.count, f.workers)
	if err != nil {
		a.run.Advance(state.PhaseFailed)
		return err
	}

	if f.historyPath != "" {
		a.run.Advance(state.PhaseWriting)
		if err := recordMass(ctx, a, f.historyPath, f.base, results); err != nil {
			return err
		}
		a.run.AddOutput(f.historyPath)
	}

	sum := generator.Summarize(results)
	renderer.MassSummary(sum)
	if sum.Failed > 0 {
		a.run.Advance(state.PhaseFailed)
		return reportedError{fmt.Errorf("%d of %d seeds failed", sum.Failed, sum.Total)}
	}
	a.run.Advance(state.PhaseDone)
	return nil
}

func recordMass(ctx context.Context, a *app, path, base string, results []generator.MassResult) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.StartRun(ctx, "mass-test", base)
	if err != nil {
		return err
	}
	for _, r := range results {
		entry := history.Entry{
			RunID:         run.ID,
			Seed:          r.Seed,
			Hash:          r.Hash,
			OK:            r.OK(),
			BuildAttempts: r.BuildAttempts,
			FillAttempts:  r.FillAttempts,
			Warnings:      r.Warnings,
			Duration:      r.Duration,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		if err := store.Record(ctx, entry); err != nil {
			return err
		}
	}
	a.logMessage("%d seeds recorded in LOC{%s} (run %s)", len(results), path, run.ID)
	a.logger.Debug("mass test recorded", zap.String("db", path), zap.String("run", run.ID))
	return nil
}
