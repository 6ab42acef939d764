// Package setup turns freshly loaded worlds into a placement plan: it applies
// the run configuration, decides which locations take progression items,
// draws race mode dungeons and builds the item and location pools.
package setup

import (
	"errors"
	"fmt"

	"wwrando/pkg/engine/fill"
	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/world"
)

// RaceModeFlag is the setting that turns on race mode
const RaceModeFlag = "race_mode"

var (
	// ErrNotInPool is returned when a configured item has no copy left in the pool
	ErrNotInPool = errors.New("item not in pool")
	// ErrDungeonItem is returned when a dungeon item is configured as starting item or pre-placed
	ErrDungeonItem = errors.New("dungeon items are placed by dungeon placement")
)

// Prepared is everything placement needs for one fill attempt
type Prepared struct {
	Pools fill.Pools
	Plan  fill.Plan
	Junk  []world.Item
}

// SetupWorlds configures the worlds and returns the placement plan.
// worlds[i].ID must equal i.
func SetupWorlds(worlds []*world.World, cfg Config, r *rng.Rand) (*Prepared, error) {
	for _, w := range worlds {
		// Enable the configured flags on every world
		if err := w.EnableSettings(cfg.Settings...); err != nil {
			return nil, err
		}
		w.Settings.RaceModeDungeons = cfg.RaceModeDungeons

		// Starting items are owned from the start and leave the pool
		if err := applyStartingItems(w, cfg.StartingItems); err != nil {
			return nil, err
		}
	}

	// Pre-placed items
	if err := applyPlandomizer(worlds, cfg.Plandomizer); err != nil {
		return nil, err
	}

	plan := fill.NewPlan()
	for _, w := range worlds {
		MarkProgressionLocations(w)
		SelectRaceModeDungeons(w, r, plan)
	}

	return &Prepared{
		Pools: BuildPools(worlds),
		Plan:  plan,
		Junk:  junkItems(worlds),
	}, nil
}

func applyStartingItems(w *world.World, names []string) error {
	for _, name := range names {
		it := w.Item(name)
		if it.Empty() {
			return fmt.Errorf("starting item %q: %w", name, world.ErrUnknownName)
		}
		if w.ItemInfo(it.ID).Key != world.NotDungeonItem {
			return fmt.Errorf("starting item %q: %w", name, ErrDungeonItem)
		}
		w.ItemPool, _ = world.RemoveItem(w.ItemPool, it)
		w.StartingItems = append(w.StartingItems, it)
	}
	return nil
}

func applyPlandomizer(worlds []*world.World, placements []Placement) error {
	for _, p := range placements {
		if p.World < 0 || p.World >= len(worlds) || p.OwnerWorld() < 0 || p.OwnerWorld() >= len(worlds) {
			return fmt.Errorf("plandomizer %q: world out of range", p.Location)
		}
		w := worlds[p.World]
		loc, ok := w.LocationByName(p.Location)
		if !ok {
			return fmt.Errorf("plandomizer location %q: %w", p.Location, world.ErrUnknownName)
		}
		owner := worlds[p.OwnerWorld()]
		it := owner.Item(p.Item)
		if it.Empty() {
			return fmt.Errorf("plandomizer item %q: %w", p.Item, world.ErrUnknownName)
		}
		info := owner.ItemInfo(it.ID)
		if info.Key != world.NotDungeonItem {
			return fmt.Errorf("plandomizer item %q: %w", p.Item, ErrDungeonItem)
		}
		if !info.Junk {
			var removed bool
			owner.ItemPool, removed = world.RemoveItem(owner.ItemPool, it)
			if !removed {
				return fmt.Errorf("plandomizer item %q: %w", p.Item, ErrNotInPool)
			}
		}
		loc.Place(it)
		loc.Plandomized = true
	}
	return nil
}

// MarkProgressionLocations flags every location whose categories are all
// enabled. The goal and pre-placed locations never take progression items.
func MarkProgressionLocations(w *world.World) {
	for _, loc := range w.Locations() {
		loc.Progression = progression(w, loc)
	}
}

func progression(w *world.World, loc *world.Location) bool {
	if loc.Plandomized || (w.HasGoal && loc.ID == w.Goal) || loc.Categories.Size() == 0 {
		return false
	}
	enabled := true
	loc.Categories.Each(func(c string) {
		if !w.CategoryEnabled(c) {
			enabled = false
		}
	})
	return enabled
}

// SelectRaceModeDungeons draws the world's race mode dungeons into plan.
// Nothing is selected when race mode is off.
func SelectRaceModeDungeons(w *world.World, r *rng.Rand, plan fill.Plan) {
	if !w.FlagEnabled(RaceModeFlag) {
		return
	}
	plan.RaceMode.Put(w.ID)

	var candidates []*world.Dungeon
	for _, d := range w.Dungeons {
		if d.HasRaceMode {
			candidates = append(candidates, d)
		}
	}
	rng.Shuffle(r, candidates)
	n := min(w.Settings.RaceModeDungeons, len(candidates))
	for _, d := range candidates[:n] {
		plan.Selected.Put(fill.DungeonRef{World: w.ID, Name: d.Name})
	}
}

// BuildPools splits every world's item pool into progression and other items
// and collects the overworld locations. Dungeon locations join the location
// pools once dungeon placement is done with them.
func BuildPools(worlds []*world.World) fill.Pools {
	var p fill.Pools
	for _, w := range worlds {
		for _, it := range w.ItemPool {
			if w.IsAdvancement(it.ID) {
				p.Progression = append(p.Progression, it)
			} else {
				p.Other = append(p.Other, it)
			}
		}
		for _, d := range w.Dungeons {
			p.Keys = append(p.Keys, d.KeyItems(w.ID)...)
		}
		for _, loc := range w.Locations() {
			if loc.InDungeon() || loc.Plandomized || (w.HasGoal && loc.ID == w.Goal) {
				continue
			}
			if loc.Progression {
				p.ProgressionLocations = append(p.ProgressionLocations, loc)
			} else {
				p.OtherLocations = append(p.OtherLocations, loc)
			}
		}
	}
	return p
}

func junkItems(worlds []*world.World) []world.Item {
	var out []world.Item
	for _, w := range worlds {
		for _, id := range w.JunkItems {
			out = append(out, world.NewItem(id, w.ID))
		}
	}
	return out
}
