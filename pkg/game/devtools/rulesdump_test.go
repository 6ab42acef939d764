package devtools

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wwrando/pkg/engine/world"
	"wwrando/pkg/game/data"
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/setup"
)

func loadBuiltin(t *testing.T) *world.World {
	t.Helper()
	w, err := data.Load(data.Builtin, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.EnableSettings(setup.Defaults().Settings...); err != nil {
		t.Fatal(err)
	}
	setup.MarkProgressionLocations(w)
	return w
}

func TestDumpRules(t *testing.T) {
	w := loadBuiltin(t)
	var buf bytes.Buffer
	if err := DumpRules(&buf, w, generator.EveryItem(w)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"=== RULE SET DUMP ===",
		"--- Macros ---",
		"--- Locations ---",
		`"Dungeon" gate: progression_dungeons enabled: true`,
		"needs: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump is missing %q", want)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if strings.HasPrefix(line, "  ") && len(fields) > 0 && strings.HasSuffix(fields[0], "!") {
			t.Errorf("builtin location marked unreachable: %s", line)
		}
	}
	if got := strings.Count(out, "        needs: "); got != len(w.Locations()) {
		t.Errorf("dump has %d requirements, want %d", got, len(w.Locations()))
	}
}

func TestLocationFlags(t *testing.T) {
	w := world.NewWorld(0)
	loc := w.MustAddLocation("Boss", world.Free())
	if got := locationFlags(w, loc, true); got != "-" {
		t.Errorf("locationFlags() = %q, want -", got)
	}

	loc.Progression = true
	loc.RaceMode = true
	w.Goal, w.HasGoal = loc.ID, true
	if got := locationFlags(w, loc, false); got != "PRG!" {
		t.Errorf("locationFlags() = %q, want PRG!", got)
	}
}

func TestDumpRulesToFile(t *testing.T) {
	w := loadBuiltin(t)
	path := filepath.Join(t.TempDir(), "rules.txt")

	got, err := DumpRulesToFile(path, w, generator.EveryItem(w))
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("DumpRulesToFile() = %q, want %q", got, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "=== RULE SET DUMP ===") {
		t.Errorf("unexpected dump start: %.40q", b)
	}
}
