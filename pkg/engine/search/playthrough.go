package search

import (
	"errors"

	"wwrando/pkg/engine/world"
)

// ErrNotBeatable is returned when a filled set of worlds cannot reach every goal
var ErrNotBeatable = errors.New("game not beatable")

// Playthrough returns the spheres of advancement placements needed to beat the
// filled worlds. Placements that are not needed are pared away: each one is
// removed in turn, latest sphere first, and dropped for good if every goal is
// still reachable without it. Every removed item is put back before returning.
func Playthrough(worlds []*world.World) ([][]*world.Location, error) {
	res := Search(worlds, nil, Options{})
	if !goalsReached(worlds, res) {
		return nil, ErrNotBeatable
	}

	var candidates []*world.Location
	for _, loc := range res.Reachable {
		if holdsAdvancement(worlds, loc) {
			candidates = append(candidates, loc)
		}
	}

	removed := make(map[*world.Location]world.Item)
	defer func() {
		for loc, it := range removed {
			loc.Place(it)
		}
	}()

	for i := len(candidates) - 1; i >= 0; i-- {
		loc := candidates[i]
		it := loc.CurrentItem
		loc.CurrentItem = world.Item{}
		if Beatable(worlds, nil) {
			removed[loc] = it
			continue
		}
		loc.Place(it)
	}

	res = Search(worlds, nil, Options{})
	var spheres [][]*world.Location
	for _, sphere := range res.Spheres {
		var kept []*world.Location
		for _, loc := range sphere {
			if holdsAdvancement(worlds, loc) {
				kept = append(kept, loc)
			}
		}
		if len(kept) > 0 {
			spheres = append(spheres, kept)
		}
	}
	return spheres, nil
}

func holdsAdvancement(worlds []*world.World, loc *world.Location) bool {
	it := loc.CurrentItem
	if it.Empty() || it.World < 0 || it.World >= len(worlds) {
		return false
	}
	return worlds[it.World].IsAdvancement(it.ID)
}
