// Package search computes which locations are reachable from a set of owned items.
package search

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/world"
)

// Options adjusts a search
type Options struct {
	// Scope switches one dungeon's key counting to a dungeon-local pool.
	// Keys of that dungeon found outside it are not counted.
	Scope *logic.DungeonScope

	// SkipStartingItems leaves the worlds' starting items out of the initial pool
	SkipStartingItems bool
}

// Result is the outcome of a search
type Result struct {
	// Reachable lists reached locations in the order they were reached
	Reachable []*world.Location
	// Spheres groups Reachable by the iteration that reached them
	Spheres [][]*world.Location
	// Owned is the final item pool, starting items included
	Owned *world.Inventory
	// Iterations counts the passes that collected new items. The last pass,
	// which finds nothing, is not counted, so it never exceeds the number of
	// placed items.
	Iterations int

	reached mapset.Set[world.Key]
}

// Reached reports whether loc was reached
func (r *Result) Reached(loc *world.Location) bool {
	return r.reached.Has(loc.Key())
}

// ReachedAll reports whether every location in locs was reached
func (r *Result) ReachedAll(locs []*world.Location) bool {
	for _, l := range locs {
		if !r.Reached(l) {
			return false
		}
	}
	return true
}

// Search runs the reachability fixpoint over every location of every world.
// items seed the owned pool. Each iteration evaluates the locations not yet
// reached, records the new ones, and then collects the items they hold; the
// search ends when an iteration collects nothing new.
func Search(worlds []*world.World, items []world.Item, opts Options) *Result {
	owned := world.NewInventory(items...)
	if !opts.SkipStartingItems {
		for _, w := range worlds {
			owned.AddAll(w.StartingItems)
		}
	}

	var scope *logic.DungeonScope
	if opts.Scope != nil {
		scope = &logic.DungeonScope{
			World:   opts.Scope.World,
			Dungeon: opts.Scope.Dungeon,
			Keys:    opts.Scope.Keys.Clone(),
		}
	}

	evals := make([]*logic.Evaluator, len(worlds))
	for i, w := range worlds {
		evals[i] = logic.NewEvaluator(w, owned)
		evals[i].Scope = scope
	}

	res := &Result{Owned: owned, reached: mapset.New[world.Key]()}
	pending := queue.New[*world.Location]()
	for _, w := range worlds {
		for _, loc := range w.Locations() {
			pending.Enqueue(loc)
		}
	}

	for {
		var sphere []*world.Location
		next := queue.New[*world.Location]()
		for !pending.Empty() {
			loc := pending.Dequeue()
			if evals[loc.World].CanAccess(loc) {
				res.reached.Put(loc.Key())
				sphere = append(sphere, loc)
			} else {
				next.Enqueue(loc)
			}
		}
		pending = next

		newItems := false
		for _, loc := range sphere {
			if loc.Empty() {
				continue
			}
			collect(loc, owned, scope)
			newItems = true
		}
		if len(sphere) > 0 {
			res.Spheres = append(res.Spheres, sphere)
			res.Reachable = append(res.Reachable, sphere...)
		}
		if !newItems {
			return res
		}
		res.Iterations++
	}
}

func collect(loc *world.Location, owned *world.Inventory, scope *logic.DungeonScope) {
	it := loc.CurrentItem
	if scope.Counts(it.World, it.ID) {
		if loc.World == scope.World && loc.Dungeon == scope.Dungeon.Name {
			scope.Keys.Add(it)
		}
		return
	}
	owned.Add(it)
}

// Beatable reports whether every world that declares a goal can reach it
// from its starting items and the given extra items.
func Beatable(worlds []*world.World, items []world.Item) bool {
	return goalsReached(worlds, Search(worlds, items, Options{}))
}

func goalsReached(worlds []*world.World, res *Result) bool {
	for _, w := range worlds {
		if !w.HasGoal {
			continue
		}
		if !res.Reached(w.Location(w.Goal)) {
			return false
		}
	}
	return true
}

// AllLocationsReachable reports whether every location of every world is reachable
func AllLocationsReachable(worlds []*world.World, items []world.Item) bool {
	res := Search(worlds, items, Options{})
	return len(res.Reachable) == len(world.AllLocations(worlds))
}

// LocationsReachable reports whether every location in locs is reachable
func LocationsReachable(worlds []*world.World, items []world.Item, locs []*world.Location) bool {
	return Search(worlds, items, Options{}).ReachedAll(locs)
}

// Unreachable returns the locations that cannot be reached, in table order
func Unreachable(worlds []*world.World, items []world.Item) []*world.Location {
	res := Search(worlds, items, Options{})
	var out []*world.Location
	for _, loc := range world.AllLocations(worlds) {
		if !res.Reached(loc) {
			out = append(out, loc)
		}
	}
	return out
}
