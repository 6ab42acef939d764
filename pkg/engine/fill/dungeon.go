package fill

import (
	"fmt"

	"github.com/zyedidia/generic/mapset"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
)

// Pools holds what is still left to place and where it may go.
// Dungeon placement takes a Pools value and returns the updated one.
type Pools struct {
	// Progression items are placed with AssumedFill over ProgressionLocations
	Progression []world.Item
	// Other items never unlock anything
	Other []world.Item
	// Keys are dungeon small and big keys not placed yet, across all worlds
	Keys []world.Item

	ProgressionLocations []*world.Location
	OtherLocations       []*world.Location
}

// Clone returns a Pools value that shares no slices with p
func (p Pools) Clone() Pools {
	return Pools{
		Progression:          append([]world.Item(nil), p.Progression...),
		Other:                append([]world.Item(nil), p.Other...),
		Keys:                 append([]world.Item(nil), p.Keys...),
		ProgressionLocations: append([]*world.Location(nil), p.ProgressionLocations...),
		OtherLocations:       append([]*world.Location(nil), p.OtherLocations...),
	}
}

// DungeonRef names a dungeon of a given world
type DungeonRef struct {
	World int
	Name  string
}

// Plan says which dungeons are subject to race mode
type Plan struct {
	// RaceMode is the set of worlds with race mode on
	RaceMode mapset.Set[int]
	// Selected are the race mode dungeons chosen for those worlds
	Selected mapset.Set[DungeonRef]
}

// NewPlan creates a plan without race mode
func NewPlan() Plan {
	return Plan{RaceMode: mapset.New[int](), Selected: mapset.New[DungeonRef]()}
}

// Warning is a recoverable placement problem worth reporting
type Warning struct {
	World    int
	Dungeon  string
	Location string
	Message  string
}

// Report describes what dungeon placement did
type Report struct {
	States   map[DungeonRef]world.DungeonState
	Warnings []Warning
}

// PlaceDungeonItems runs dungeon-constrained placement for every dungeon of
// every world, in table order. For each dungeon it tries a race mode boss
// reward, places the dungeon's keys inside the dungeon, drops the map and
// compass into what is left, and hands the remaining locations back to the
// global pools.
func PlaceDungeonItems(worlds []*world.World, r *rng.Rand, pools Pools, plan Plan) (Pools, Report, error) {
	report := Report{States: make(map[DungeonRef]world.DungeonState)}
	pools = pools.Clone()
	for _, w := range worlds {
		for _, d := range w.Dungeons {
			ref := DungeonRef{World: w.ID, Name: d.Name}
			report.States[ref] = world.Unprocessed
			var err error
			pools, err = placeDungeon(worlds, r, w, d, pools, plan, &report)
			if err != nil {
				return pools, report, fmt.Errorf("dungeon %s (world %d): %w", d.Name, w.ID, err)
			}
		}
	}
	return pools, report, nil
}

func placeDungeon(worlds []*world.World, r *rng.Rand, w *world.World, d *world.Dungeon, pools Pools, plan Plan, report *Report) (Pools, error) {
	ref := DungeonRef{World: w.ID, Name: d.Name}
	raceMode := plan.RaceMode.Has(w.ID)
	selected := plan.Selected.Has(ref)

	if raceMode && selected && d.HasRaceMode {
		var warn *Warning
		pools, warn = placeRaceItem(worlds, w, d, pools)
		if warn != nil {
			report.Warnings = append(report.Warnings, *warn)
		}
	}
	report.States[ref] = world.RaceItemAttempted

	keys := d.KeyItems(w.ID)
	if len(keys) > 0 {
		assumed := make([]world.Item, 0, len(pools.Progression)+len(pools.Keys))
		assumed = append(assumed, pools.Progression...)
		rest := append([]world.Item(nil), pools.Keys...)
		for _, k := range keys {
			rest, _ = world.RemoveItem(rest, k)
		}
		assumed = append(assumed, rest...)

		o := options{scope: &logic.DungeonScope{World: w.ID, Dungeon: d}}
		if d.HasEntrance {
			o.entrance = w.Location(d.EntranceLocation)
		}
		targets := world.EmptyLocations(w.DungeonLocations(d))
		if err := assumedFill(worlds, r, keys, targets, assumed, o); err != nil {
			return pools, err
		}
		pools.Keys = rest
	}
	report.States[ref] = world.KeysPlaced

	if err := FastFill(r, d.LocalItems(w.ID), w.DungeonLocations(d)); err != nil {
		return pools, err
	}
	report.States[ref] = world.NonKeyItemsPlaced

	for _, loc := range world.EmptyLocations(w.DungeonLocations(d)) {
		if loc.Progression && (!raceMode || selected) {
			pools.ProgressionLocations = append(pools.ProgressionLocations, loc)
		} else {
			pools.OtherLocations = append(pools.OtherLocations, loc)
		}
	}
	report.States[ref] = world.Done
	return pools, nil
}

// placeRaceItem puts the first candidate from the world's race mode list at
// the boss location, provided the boss stays reachable without that item.
// When no candidate qualifies the boss location is demoted to non-progression.
func placeRaceItem(worlds []*world.World, w *world.World, d *world.Dungeon, pools Pools) (Pools, *Warning) {
	boss := w.Location(d.RaceModeLocation)
	if boss == nil || !boss.Empty() {
		return pools, nil
	}
	for _, id := range w.RaceModeItems {
		it := world.NewItem(id, w.ID)
		rest, ok := world.RemoveItem(pools.Progression, it)
		if !ok {
			continue
		}
		owned := append(append([]world.Item(nil), rest...), pools.Keys...)
		if !search.Search(worlds, owned, search.Options{}).Reached(boss) {
			continue
		}
		boss.Place(it)
		pools.Progression = rest
		return pools, nil
	}
	boss.Progression = false
	return pools, &Warning{
		World:    w.ID,
		Dungeon:  d.Name,
		Location: boss.Name,
		Message:  "no race mode item could be placed at the boss; location demoted to non-progression",
	}
}
