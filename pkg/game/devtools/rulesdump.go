// Package devtools provides developer tools for testing and debugging rule sets.
package devtools

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
)

// RulesDumpFilename is where DumpRulesToFile writes by default
const RulesDumpFilename = "rules.txt"

// locationFlags returns the one-letter flags of a location (see the legend)
func locationFlags(w *world.World, loc *world.Location, reached bool) string {
	var sb strings.Builder
	if loc.Progression {
		sb.WriteByte('P')
	}
	if loc.Entrance {
		sb.WriteByte('E')
	}
	if loc.RaceMode {
		sb.WriteByte('R')
	}
	if w.HasGoal && loc.ID == w.Goal {
		sb.WriteByte('G')
	}
	if !reached {
		sb.WriteByte('!')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// DumpRules writes a debug dump of one loaded world: metadata, legend,
// settings, categories, dungeons, macros and every location with its
// requirement. The reachability column assumes every pool item is held.
func DumpRules(out io.Writer, w *world.World, items []world.Item) error {
	res := search.Search([]*world.World{w}, items, search.Options{})
	d := &dumper{out: out}

	// --- Metadata ---
	d.line("=== RULE SET DUMP ===")
	d.line("")
	d.line("--- Metadata ---")
	d.line("world: %d", w.ID)
	d.line("items: %d", w.ItemCount())
	d.line("item_pool: %d", len(w.ItemPool))
	d.line("macros: %d", w.MacroCount())
	d.line("locations: %d", len(w.Locations()))
	d.line("dungeons: %d", len(w.Dungeons))
	if w.HasGoal {
		d.line("goal: %q", w.Location(w.Goal).Name)
	}
	d.line("")

	// --- Legend ---
	d.line("--- Legend (location flags) ---")
	d.line("P = progression  E = dungeon entrance  R = race mode check  G = goal  ! = unreachable with every item  - = none")
	d.line("")

	d.line("--- Settings ---")
	for _, name := range w.SettingNames() {
		d.line("  %s: %v", name, w.FlagEnabled(name))
	}
	d.line("")

	d.line("--- Categories ---")
	for _, name := range w.Categories() {
		gate := "always"
		if flag, ok := w.CategoryGate(name); ok {
			gate = w.SettingName(flag)
		}
		d.line("  %q gate: %s enabled: %v", name, gate, w.CategoryEnabled(name))
	}
	d.line("")

	d.line("--- Dungeons ---")
	for _, dg := range w.Dungeons {
		d.line("  %q small_keys: %d big_key: %v locations: %d", dg.Name, dg.KeyCount, dg.BigKey != world.None, len(dg.Locations))
	}
	d.line("")

	d.line("--- Macros ---")
	for i := 0; i < w.MacroCount(); i++ {
		idx := world.MacroIndex(i)
		d.line("  %s = %s", w.MacroName(idx), logic.String(w, w.MacroBody(idx)))
	}
	d.line("")

	d.line("--- Locations ---")
	for _, loc := range w.Locations() {
		d.line("  %-5s %q dungeon: %q categories: %v original: %q",
			locationFlags(w, loc, res.Reached(loc)), loc.Name, loc.Dungeon,
			loc.SortedCategories(), w.ItemName(loc.OriginalItem.ID))
		d.line("        needs: %s", logic.String(w, &loc.Requirement))
	}

	return d.err
}

// DumpRulesToFile writes DumpRules output to path (RulesDumpFilename when
// empty) and returns the absolute path written.
func DumpRulesToFile(path string, w *world.World, items []world.Item) (string, error) {
	if path == "" {
		path = RulesDumpFilename
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	f, err := os.Create(absPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := DumpRules(f, w, items); err != nil {
		return "", err
	}
	return absPath, f.Close()
}

type dumper struct {
	out io.Writer
	err error
}

func (d *dumper) line(format string, a ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.out, format+"\n", a...)
}
