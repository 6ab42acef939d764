// Package generator drives seed generation: it loads the worlds, applies the
// configuration and retries placement until a beatable seed comes out.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wwrando/pkg/engine/fill"
	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
	"wwrando/pkg/game/data"
	"wwrando/pkg/game/setup"
)

// ErrCouldNotGenerate is returned when every build and fill retry failed
var ErrCouldNotGenerate = errors.New("could not generate a seed")

// Options configures a generation run
type Options struct {
	Config    setup.Config
	Data      fs.FS
	Algorithm Algorithm
	Logger    *zap.Logger
}

func (o Options) normalized() Options {
	if o.Data == nil {
		o.Data = data.Builtin
	}
	if o.Algorithm == nil {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Result is a finished seed
type Result struct {
	Seed        string
	Hash        string
	Algorithm   string
	Worlds      []*world.World
	Playthrough [][]*world.Location
	Warnings    []fill.Warning

	BuildAttempts int
	FillAttempts  int
	Duration      time.Duration
}

// NewSeed returns a random seed string for runs without one
func NewSeed() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// LoadWorlds builds n independent worlds from the rule set
func LoadWorlds(fsys fs.FS, n int) ([]*world.World, error) {
	worlds := make([]*world.World, 0, n)
	for i := 0; i < n; i++ {
		w, err := data.Load(fsys, i)
		if err != nil {
			return nil, err
		}
		worlds = append(worlds, w)
	}
	return worlds, nil
}

// Generate produces a seed. Fill attempts are retried on the same worlds;
// when they all fail the worlds are rebuilt with a fresh random stream.
// Rule set and configuration errors are returned at once.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	opts = opts.normalized()
	cfg := opts.Config
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == "" {
		cfg.Seed = NewSeed()
	}
	log := opts.Logger.With(zap.String("seed", cfg.Seed), zap.String("algorithm", opts.Algorithm.Name()))
	base := rng.FromString(cfg.Seed)
	start := time.Now()
	fills := 0

	for build := 1; build <= cfg.BuildRetries; build++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := base.Derive(fmt.Sprintf("build-%d", build))

		worlds, err := LoadWorlds(opts.Data, cfg.Worlds)
		if err != nil {
			return nil, err
		}
		prep, err := setup.SetupWorlds(worlds, cfg, r)
		if err != nil {
			return nil, err
		}

		for attempt := 1; attempt <= cfg.FillRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fills++
			if attempt > 1 {
				reset(worlds)
			}
			report, err := opts.Algorithm.Fill(worlds, r, prep)
			if err != nil {
				log.Debug("fill attempt failed",
					zap.Int("build", build),
					zap.Int("attempt", attempt),
					zap.Error(err))
				continue
			}
			for _, w := range report.Warnings {
				log.Warn("race mode demotion",
					zap.Int("world", w.World),
					zap.String("dungeon", w.Dungeon),
					zap.String("location", w.Location))
			}

			playthrough, err := search.Playthrough(worlds)
			if err != nil {
				return nil, err
			}
			res := &Result{
				Seed:          cfg.Seed,
				Hash:          PlacementHash(worlds),
				Algorithm:     opts.Algorithm.Name(),
				Worlds:        worlds,
				Playthrough:   playthrough,
				Warnings:      report.Warnings,
				BuildAttempts: build,
				FillAttempts:  fills,
				Duration:      time.Since(start),
			}
			log.Info("seed generated",
				zap.String("hash", res.Hash),
				zap.Int("builds", build),
				zap.Int("fills", fills),
				zap.Duration("duration", res.Duration))
			return res, nil
		}
		log.Info("build exhausted its fill retries", zap.Int("build", build))
	}
	return nil, fmt.Errorf("%w after %d builds (%d fill attempts)", ErrCouldNotGenerate, cfg.BuildRetries, fills)
}

// reset empties every non-plandomized location and restores the progression
// flags that placement may have demoted
func reset(worlds []*world.World) {
	for _, w := range worlds {
		w.ClearPlacements()
		setup.MarkProgressionLocations(w)
	}
}

// PlacementHash fingerprints the final placement so two runs can be compared
func PlacementHash(worlds []*world.World) string {
	d := xxhash.New()
	for _, loc := range world.AllLocations(worlds) {
		fmt.Fprintf(d, "%d/%d=%d/%d;", loc.World, loc.ID, loc.CurrentItem.World, loc.CurrentItem.ID)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
