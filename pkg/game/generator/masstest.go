package generator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MassResult is the outcome of one seed of a mass test
type MassResult struct {
	Seed          string
	Hash          string
	Err           error
	BuildAttempts int
	FillAttempts  int
	Warnings      int
	Duration      time.Duration
}

// OK reports whether the seed was generated
func (m MassResult) OK() bool {
	return m.Err == nil
}

// MassSummary aggregates a mass test
type MassSummary struct {
	Total    int
	Failed   int
	Warnings int
	// Errors counts failures by message
	Errors map[string]int
}

// MassTest generates count seeds derived from base, at most workers at a
// time. Seeds that cannot be generated are recorded as failures; only
// cancellation and rule set errors stop the run.
func MassTest(ctx context.Context, opts Options, base string, count, workers int) ([]MassResult, error) {
	opts = opts.normalized()
	if base == "" {
		base = NewSeed()
	}
	if workers < 1 {
		workers = 1
	}
	results := make([]MassResult, count)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < count; i++ {
		seed := fmt.Sprintf("%s-%d", base, i)
		eg.Go(func() error {
			o := opts
			o.Config.Seed = seed
			o.Logger = opts.Logger.Named("mass")

			res, err := Generate(egCtx, o)
			out := MassResult{Seed: seed, Err: err}
			if res != nil {
				out.Hash = res.Hash
				out.BuildAttempts = res.BuildAttempts
				out.FillAttempts = res.FillAttempts
				out.Warnings = len(res.Warnings)
				out.Duration = res.Duration
			}
			results[i] = out
			if err != nil && !errors.Is(err, ErrCouldNotGenerate) {
				return err
			}
			opts.Logger.Debug("mass test seed done", zap.String("seed", seed), zap.Bool("ok", err == nil))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Summarize counts failures and warnings
func Summarize(results []MassResult) MassSummary {
	s := MassSummary{Total: len(results), Errors: make(map[string]int)}
	for _, r := range results {
		s.Warnings += r.Warnings
		if !r.OK() {
			s.Failed++
			s.Errors[r.Err.Error()]++
		}
	}
	return s
}

// ErrorMessages returns the distinct failure messages, most frequent first
func (s MassSummary) ErrorMessages() []string {
	msgs := make([]string, 0, len(s.Errors))
	for m := range s.Errors {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if s.Errors[msgs[i]] != s.Errors[msgs[j]] {
			return s.Errors[msgs[i]] > s.Errors[msgs[j]]
		}
		return msgs[i] < msgs[j]
	})
	return msgs
}
