package logic

import (
	"fmt"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"wwrando/pkg/engine/world"
)

// Validate checks that req is well formed and that every reference resolves in w
func Validate(w *world.World, req *world.Requirement) error {
	switch req.Kind {
	case world.And, world.Or:
		if len(req.Args) == 0 {
			return fmt.Errorf("%s: %w", req.Kind, ErrEmpty)
		}
		for i := range req.Args {
			if err := Validate(w, &req.Args[i]); err != nil {
				return err
			}
		}
	case world.Not:
		if len(req.Args) != 1 {
			return fmt.Errorf("not takes 1 argument, got %d: %w", len(req.Args), ErrArity)
		}
		return Validate(w, &req.Args[0])
	case world.HasItem, world.Count:
		if req.Item <= world.None || int(req.Item) >= w.ItemCount() {
			return fmt.Errorf("item id %d: %w", req.Item, ErrUnknownSymbol)
		}
		if req.Kind == world.Count && req.Count < 0 {
			return fmt.Errorf("count %d: %w", req.Count, ErrArity)
		}
	case world.CanAccess:
		if w.Location(req.Location) == nil {
			return fmt.Errorf("location id %d: %w", req.Location, ErrUnknownSymbol)
		}
	case world.Setting:
		if w.SettingName(req.Setting) == "" {
			return fmt.Errorf("setting id %d: %w", req.Setting, ErrUnknownSymbol)
		}
	case world.Macro:
		if w.MacroBody(req.Macro) == nil {
			return fmt.Errorf("macro index %d: %w", req.Macro, ErrUnknownSymbol)
		}
	case world.Impossible:
	default:
		return fmt.Errorf("kind %d: %w", int(req.Kind), ErrUnknownKind)
	}
	return nil
}

type nodeKind int

const (
	locationNode nodeKind = iota
	macroNode
)

type node struct {
	kind nodeKind
	id   int
}

// CheckCycles rejects worlds whose can_access references or macro references
// loop back on themselves.
func CheckCycles(w *world.World) error {
	c := &cycleCheck{
		w:       w,
		done:    mapset.New[node](),
		onStack: mapset.New[node](),
	}
	for i := 0; i < w.MacroCount(); i++ {
		if err := c.visit(node{macroNode, i}); err != nil {
			return err
		}
	}
	for _, loc := range w.Locations() {
		if err := c.visit(node{locationNode, int(loc.ID)}); err != nil {
			return err
		}
	}
	return nil
}

type cycleCheck struct {
	w       *world.World
	done    mapset.Set[node]
	onStack mapset.Set[node]
	stack   []node
}

func (c *cycleCheck) visit(n node) error {
	if c.done.Has(n) {
		return nil
	}
	if c.onStack.Has(n) {
		return c.cycleError(n)
	}
	c.onStack.Put(n)
	c.stack = append(c.stack, n)

	var deps []node
	collectRefs(c.body(n), &deps)
	for _, d := range deps {
		if err := c.visit(d); err != nil {
			return err
		}
	}

	c.stack = c.stack[:len(c.stack)-1]
	c.onStack.Remove(n)
	c.done.Put(n)
	return nil
}

func (c *cycleCheck) body(n node) *world.Requirement {
	if n.kind == macroNode {
		return c.w.MacroBody(world.MacroIndex(n.id))
	}
	if loc := c.w.Location(world.LocationID(n.id)); loc != nil {
		return &loc.Requirement
	}
	return nil
}

func (c *cycleCheck) name(n node) string {
	if n.kind == macroNode {
		return c.w.MacroName(world.MacroIndex(n.id))
	}
	return c.w.Location(world.LocationID(n.id)).Name
}

func (c *cycleCheck) cycleError(n node) error {
	start := 0
	for i, s := range c.stack {
		if s == n {
			start = i
			break
		}
	}
	var names []string
	err := ErrMacroCycle
	for _, s := range c.stack[start:] {
		names = append(names, c.name(s))
		if s.kind == locationNode {
			err = ErrAccessCycle
		}
	}
	names = append(names, c.name(n))
	return fmt.Errorf("%w: %s", err, strings.Join(names, " -> "))
}

func collectRefs(req *world.Requirement, out *[]node) {
	if req == nil {
		return
	}
	switch req.Kind {
	case world.CanAccess:
		*out = append(*out, node{locationNode, int(req.Location)})
	case world.Macro:
		*out = append(*out, node{macroNode, int(req.Macro)})
	case world.And, world.Or, world.Not:
		for i := range req.Args {
			collectRefs(&req.Args[i], out)
		}
	}
}
