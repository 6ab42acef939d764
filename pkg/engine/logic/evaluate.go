// Package logic evaluates, parses and checks requirement expressions.
package logic

import (
	"wwrando/pkg/engine/world"
)

// maxAccessDepth bounds can_access chains for worlds that were built by hand
// and never went through CheckCycles.
const maxAccessDepth = 256

// DungeonScope switches key counting for one dungeon to a dungeon-local pool.
type DungeonScope struct {
	World   int
	Dungeon *world.Dungeon
	Keys    *world.Inventory
}

// Counts reports whether the scope is responsible for counting id in world w
func (s *DungeonScope) Counts(w int, id world.ItemID) bool {
	return s != nil && s.World == w && s.Dungeon.OwnsKey(id)
}

// Evaluator decides requirements for one world against a set of owned items.
type Evaluator struct {
	World    *world.World
	Owned    *world.Inventory
	Settings world.Settings
	Scope    *DungeonScope
}

// NewEvaluator creates an evaluator using the world's own settings
func NewEvaluator(w *world.World, owned *world.Inventory) *Evaluator {
	return &Evaluator{World: w, Owned: owned, Settings: w.Settings}
}

// Evaluate reports whether req is met
func Evaluate(w *world.World, req *world.Requirement, owned *world.Inventory) bool {
	return NewEvaluator(w, owned).Evaluate(req)
}

// Evaluate reports whether req is met by the evaluator's owned items and settings
func (e *Evaluator) Evaluate(req *world.Requirement) bool {
	return e.eval(req, 0)
}

// CanAccess reports whether the location's requirement is met
func (e *Evaluator) CanAccess(loc *world.Location) bool {
	return e.eval(&loc.Requirement, 0)
}

func (e *Evaluator) count(id world.ItemID) int {
	it := world.NewItem(id, e.World.ID)
	if e.Scope.Counts(e.World.ID, id) {
		return e.Scope.Keys.Count(it)
	}
	return e.Owned.Count(it)
}

func (e *Evaluator) eval(req *world.Requirement, depth int) bool {
	switch req.Kind {
	case world.And:
		for i := range req.Args {
			if !e.eval(&req.Args[i], depth) {
				return false
			}
		}
		return len(req.Args) > 0
	case world.Or:
		for i := range req.Args {
			if e.eval(&req.Args[i], depth) {
				return true
			}
		}
		return false
	case world.Not:
		if len(req.Args) != 1 {
			return false
		}
		return !e.eval(&req.Args[0], depth)
	case world.HasItem:
		if req.Item == world.Nothing {
			return true
		}
		return e.count(req.Item) >= 1
	case world.Count:
		return e.count(req.Item) >= req.Count
	case world.CanAccess:
		loc := e.World.Location(req.Location)
		if loc == nil || depth >= maxAccessDepth {
			return false
		}
		return e.eval(&loc.Requirement, depth+1)
	case world.Setting:
		return e.Settings.Enabled(req.Setting)
	case world.Macro:
		body := e.World.MacroBody(req.Macro)
		if body == nil || depth >= maxAccessDepth {
			return false
		}
		return e.eval(body, depth+1)
	case world.Impossible:
		return false
	default:
		return false
	}
}
