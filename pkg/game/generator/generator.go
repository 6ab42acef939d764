package generator

import (
	"fmt"

	"wwrando/pkg/engine/fill"
	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
	"wwrando/pkg/game/setup"
)

// Algorithm places every item of a prepared set of worlds
type Algorithm interface {
	Fill(worlds []*world.World, r *rng.Rand, prep *setup.Prepared) (fill.Report, error)
	Name() string
}

// Available algorithms
var (
	Assumed = &AssumedAlgorithm{}
	Vanilla = &VanillaAlgorithm{}
)

// DefaultAlgorithm is the algorithm used when none is given
var DefaultAlgorithm Algorithm = Assumed

// Algorithms indexes the available algorithms by name
var Algorithms = map[string]Algorithm{
	Assumed.Name(): Assumed,
	Vanilla.Name(): Vanilla,
}

// AssumedAlgorithm runs dungeon placement followed by a global assumed fill
type AssumedAlgorithm struct{}

func (AssumedAlgorithm) Name() string { return "assumed" }

func (AssumedAlgorithm) Fill(worlds []*world.World, r *rng.Rand, prep *setup.Prepared) (fill.Report, error) {
	pools, report, err := fill.PlaceDungeonItems(worlds, r, prep.Pools, prep.Plan)
	if err != nil {
		return report, err
	}
	if err := fill.AssumedFill(worlds, r, pools.Progression, pools.ProgressionLocations, nil); err != nil {
		return report, err
	}

	rest := append(append([]*world.Location(nil), pools.OtherLocations...), pools.ProgressionLocations...)
	if err := fill.FastFill(r, pools.Other, rest); err != nil {
		return report, err
	}
	if err := fill.FillRemaining(r, prep.Junk, rest); err != nil {
		return report, err
	}
	if !search.Beatable(worlds, nil) {
		return report, search.ErrNotBeatable
	}
	return report, nil
}

// VanillaAlgorithm puts every location's original item back. It ignores the
// pools and is used to check rule sets against the unrandomized game.
type VanillaAlgorithm struct{}

func (VanillaAlgorithm) Name() string { return "vanilla" }

func (VanillaAlgorithm) Fill(worlds []*world.World, _ *rng.Rand, _ *setup.Prepared) (fill.Report, error) {
	report := fill.Report{States: make(map[fill.DungeonRef]world.DungeonState)}
	for _, w := range worlds {
		for _, loc := range w.Locations() {
			if loc.Plandomized || loc.OriginalItem.Empty() {
				continue
			}
			loc.Place(loc.OriginalItem)
		}
		for _, d := range w.Dungeons {
			report.States[fill.DungeonRef{World: w.ID, Name: d.Name}] = world.Done
		}
	}
	if !search.Beatable(worlds, nil) {
		return report, fmt.Errorf("vanilla placement: %w", search.ErrNotBeatable)
	}
	return report, nil
}
