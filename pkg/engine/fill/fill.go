// Package fill places items into locations so that the result stays beatable.
package fill

import (
	"fmt"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
)

type options struct {
	scope    *logic.DungeonScope
	entrance *world.Location
}

// AssumedFill places items into locations with the assumed fill algorithm.
// Every item still to be placed, plus assumed, counts as owned while the
// destination of the current item is chosen; an item only ever lands in a
// location that is reachable without it. Target locations are emptied first,
// except pre-placed ones.
func AssumedFill(worlds []*world.World, r *rng.Rand, items []world.Item, locations []*world.Location, assumed []world.Item) error {
	return assumedFill(worlds, r, items, locations, assumed, options{})
}

func assumedFill(worlds []*world.World, r *rng.Rand, items []world.Item, locations []*world.Location, assumed []world.Item, o options) error {
	for _, loc := range locations {
		loc.Clear()
	}
	targets := world.EmptyLocations(locations)
	if len(items) > len(targets) {
		return fmt.Errorf("%d items for %d locations: %w", len(items), len(targets), ErrMoreItemsThanLocations)
	}

	pool := append([]world.Item(nil), items...)
	rng.Shuffle(r, pool)

	for len(pool) > 0 {
		var it world.Item
		it, pool = rng.PopBack(pool)

		owned := make([]world.Item, 0, len(assumed)+len(pool))
		owned = append(owned, assumed...)
		owned = append(owned, pool...)
		opts := search.Options{}
		if o.scope != nil {
			keys := world.NewInventory()
			var rest []world.Item
			for _, a := range owned {
				if o.scope.Counts(a.World, a.ID) {
					keys.Add(a)
				} else {
					rest = append(rest, a)
				}
			}
			owned = rest
			opts.Scope = &logic.DungeonScope{World: o.scope.World, Dungeon: o.scope.Dungeon, Keys: keys}
		}

		res := search.Search(worlds, owned, opts)
		var candidates []*world.Location
		for _, loc := range targets {
			if loc.Empty() && res.Reached(loc) {
				candidates = append(candidates, loc)
			}
		}
		if len(candidates) == 0 {
			return placementError(worlds, it, ErrNoReachableLocation)
		}

		o.choose(r, pool, candidates).Place(it)
	}
	return nil
}

// choose draws the destination. While one of the dungeon's small keys is
// still waiting to be placed, nothing goes into the entrance unless it is
// the only candidate.
func (o options) choose(r *rng.Rand, rest []world.Item, candidates []*world.Location) *world.Location {
	if o.entrance == nil || o.scope == nil || !o.keysPending(rest) {
		return rng.Pick(r, candidates)
	}
	others := make([]*world.Location, 0, len(candidates))
	for _, loc := range candidates {
		if loc != o.entrance {
			others = append(others, loc)
		}
	}
	if len(others) == 0 {
		return o.entrance
	}
	return rng.Pick(r, others)
}

// keysPending reports whether rest holds a small key of the scoped dungeon
func (o options) keysPending(rest []world.Item) bool {
	d := o.scope.Dungeon
	if d.SmallKey == world.None {
		return false
	}
	for _, it := range rest {
		if it.ID == d.SmallKey && it.World == o.scope.World {
			return true
		}
	}
	return false
}

// FastFill places items into random empty locations without checking logic.
// It is meant for items that never unlock anything.
func FastFill(r *rng.Rand, items []world.Item, locations []*world.Location) error {
	empty := world.EmptyLocations(locations)
	if len(items) > len(empty) {
		return fmt.Errorf("%d items for %d locations: %w", len(items), len(empty), ErrMoreItemsThanLocations)
	}
	pool := append([]world.Item(nil), items...)
	rng.Shuffle(r, pool)
	for _, it := range pool {
		var loc *world.Location
		loc, empty = rng.Pop(r, empty)
		loc.Place(it)
	}
	return nil
}

// FillRemaining puts a random junk item into every location that is still empty
func FillRemaining(r *rng.Rand, junk []world.Item, locations []*world.Location) error {
	empty := world.EmptyLocations(locations)
	if len(empty) == 0 {
		return nil
	}
	if len(junk) == 0 {
		return fmt.Errorf("%d empty locations and no junk items: %w", len(empty), ErrNoReachableLocation)
	}
	for _, loc := range empty {
		loc.Place(rng.Pick(r, junk))
	}
	return nil
}
