package generator

import (
	"context"
	"errors"

	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
)

// CheckReport summarizes a rule set sanity check
type CheckReport struct {
	Locations int
	Items     int
	Macros    int

	// Unreachable lists locations that stay out of reach with every item
	Unreachable []string

	// VanillaErr is nil when the original placement can be beaten
	VanillaErr error
}

// OK reports whether the rule set passed every check
func (c CheckReport) OK() bool {
	return len(c.Unreachable) == 0 && c.VanillaErr == nil
}

// Check loads a single world with the configured settings, searches it
// holding every item of the pool, and tries the original placement.
// Load errors are returned; reachability problems go in the report.
func Check(ctx context.Context, opts Options) (*CheckReport, error) {
	opts = opts.normalized()
	worlds, err := LoadWorlds(opts.Data, 1)
	if err != nil {
		return nil, err
	}
	w := worlds[0]
	if err := w.EnableSettings(opts.Config.Settings...); err != nil {
		return nil, err
	}

	report := &CheckReport{
		Locations: len(w.Locations()),
		Items:     w.ItemCount(),
		Macros:    w.MacroCount(),
	}

	for _, loc := range search.Unreachable(worlds, EveryItem(w)) {
		report.Unreachable = append(report.Unreachable, loc.Name)
	}

	vanilla := opts
	vanilla.Algorithm = Vanilla
	vanilla.Config.Worlds = 1
	vanilla.Config.StartingItems = nil
	vanilla.Config.Plandomizer = nil
	vanilla.Config.FillRetries = 1
	vanilla.Config.BuildRetries = 1
	if vanilla.Config.Seed == "" {
		vanilla.Config.Seed = "check"
	}
	if _, err := Generate(ctx, vanilla); err != nil {
		if !errors.Is(err, ErrCouldNotGenerate) {
			return nil, err
		}
		report.VanillaErr = err
	}

	return report, nil
}

// EveryItem returns the world's item pool together with its dungeon items
func EveryItem(w *world.World) []world.Item {
	items := append([]world.Item(nil), w.ItemPool...)
	for _, d := range w.Dungeons {
		items = append(items, d.KeyItems(w.ID)...)
		items = append(items, d.LocalItems(w.ID)...)
	}
	return items
}
