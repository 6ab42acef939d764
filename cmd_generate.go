package main

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/history"
	"wwrando/pkg/game/locale"
	"wwrando/pkg/game/renderer"
	"wwrando/pkg/game/spoiler"
	"wwrando/pkg/game/state"
)

type generateFlags struct {
	seed        string
	worlds      int
	spoilerPath string
	historyPath string
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one seed",
		Long: `Generate places every item of the rule set, checks that each world can
be beaten, and prints the playthrough. Nothing is written when no
placement could be found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, f)
		},
	}
	cmd.Flags().StringVarP(&f.seed, "seed", "s", "", "Seed string (default: config seed or random)")
	cmd.Flags().IntVarP(&f.worlds, "worlds", "w", 0, "Number of worlds (default: config)")
	cmd.Flags().StringVar(&f.spoilerPath, "spoiler", "", "Write the spoiler log here (.txt, .json, .yaml; add .zst to compress)")
	cmd.Flags().StringVar(&f.historyPath, "history", "", "Record the seed in this SQLite database")
	return cmd
}

func runGenerate(ctx context.Context, a *app, f *generateFlags) error {
	opts, err := a.options()
	if err != nil {
		return err
	}
	if f.seed != "" {
		opts.Config.Seed = f.seed
	}
	if f.worlds > 0 {
		opts.Config.Worlds = f.worlds
	}
	if opts.Config.Seed == "" {
		opts.Config.Seed = generator.NewSeed()
	}
	opts.Config.Normalize()
	if err := opts.Config.Validate(); err != nil {
		return err
	}

	a.run.Seed = opts.Config.Seed
	a.run.Advance(state.PhaseGenerating)
	start := time.Now()
	res, genErr := generator.Generate(ctx, opts)

	var log *spoiler.Log
	if genErr == nil {
		log = spoiler.Build(res, opts.Config)
	}

	if f.historyPath != "" {
		if err := recordGenerate(ctx, a, f.historyPath, opts.Config.Seed, res, log, genErr, time.Since(start)); err != nil {
			return err
		}
	}

	if genErr != nil {
		a.run.Advance(state.PhaseFailed)
		if !errors.Is(genErr, generator.ErrCouldNotGenerate) {
			return genErr
		}
		renderer.Failure(genErr)
		return reportedError{genErr}
	}

	a.run.AddWarnings(res.Warnings...)
	renderer.Result(res)

	if f.spoilerPath != "" {
		a.run.Advance(state.PhaseWriting)
		if err := spoiler.WriteFile(f.spoilerPath, log); err != nil {
			a.run.Advance(state.PhaseFailed)
			return err
		}
		a.run.AddOutput(f.spoilerPath)
		a.logMessage("%s", locale.Get("GEN_SPOILER_WRITTEN", "LOC{"+f.spoilerPath+"}"))
	}
	a.run.Advance(state.PhaseDone)
	return nil
}

func recordGenerate(ctx context.Context, a *app, path, seed string, res *generator.Result,
	log *spoiler.Log, genErr error, elapsed time.Duration) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.StartRun(ctx, "generate", seed)
	if err != nil {
		return err
	}

	entry := history.Entry{RunID: run.ID, Seed: seed, Duration: elapsed}
	if genErr != nil {
		entry.Error = genErr.Error()
	} else {
		var text bytes.Buffer
		if err := spoiler.Write(&text, log); err != nil {
			return err
		}
		entry.OK = true
		entry.Hash = res.Hash
		entry.BuildAttempts = res.BuildAttempts
		entry.FillAttempts = res.FillAttempts
		entry.Warnings = len(res.Warnings)
		entry.Duration = res.Duration
		entry.Spoiler = text.Bytes()
	}
	if err := store.Record(ctx, entry); err != nil {
		return err
	}
	a.logger.Debug("seed recorded", zap.String("db", path), zap.String("run", run.ID))
	return nil
}
