package data

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/world"
)

func TestLoadBuiltin(t *testing.T) {
	w, err := Load(Builtin, 0)
	require.NoError(t, err)

	assert.True(t, w.HasGoal)
	assert.Equal(t, "Ganon's Tower - Defeat Ganondorf", w.Location(w.Goal).Name)
	assert.Len(t, w.Dungeons, 3)
	assert.Len(t, w.RaceModeItems, 3)
	assert.NotEmpty(t, w.JunkItems)

	drc, ok := w.Dungeon("Dragon Roost Cavern")
	require.True(t, ok)
	assert.Equal(t, 2, drc.KeyCount)
	assert.True(t, drc.HasEntrance)
	assert.True(t, drc.HasRaceMode)
	assert.Equal(t, "Dragon Roost Cavern - First Room", w.Location(drc.EntranceLocation).Name)
	assert.Len(t, drc.Locations, 7)

	for _, it := range w.ItemPool {
		assert.Equal(t, world.NotDungeonItem, w.ItemInfo(it.ID).Key, w.ItemName(it.ID))
	}
	swords := 0
	for _, it := range w.ItemPool {
		if w.ItemName(it.ID) == "Progressive Sword" {
			swords++
		}
	}
	assert.Equal(t, 2, swords)
}

func TestLoadBuiltinFitsLocations(t *testing.T) {
	w, err := Load(Builtin, 0)
	require.NoError(t, err)

	keys := 0
	for _, d := range w.Dungeons {
		keys += len(d.KeyItems(0)) + len(d.LocalItems(0))
	}
	// the goal is an event and never holds an item
	assert.LessOrEqual(t, len(w.ItemPool)+keys, len(w.Locations())-1)
}

func TestLoadBuiltinGenericKeys(t *testing.T) {
	w, err := Load(Builtin, 0)
	require.NoError(t, err)

	drc, _ := w.Dungeon("Dragon Roost Cavern")
	fw, _ := w.Dungeon("Forbidden Woods")
	loc, _ := w.LocationByName("Dragon Roost Cavern - Pot Room")
	assert.Equal(t, world.CountOf(2, drc.SmallKey), loc.Requirement)

	loc, _ = w.LocationByName("Forbidden Woods - Locked Room")
	assert.Contains(t, logic.String(w, &loc.Requirement), "FW_Small_Key")
	assert.NotEqual(t, drc.SmallKey, fw.SmallKey)
}

func TestLoadBuiltinForwardMacro(t *testing.T) {
	w, err := Load(Builtin, 0)
	require.NoError(t, err)

	loc, _ := w.LocationByName("Headstone Island - Top of the Island")
	owned := world.NewInventory()
	assert.False(t, logic.Evaluate(w, &loc.Requirement, owned))
	owned.Add(w.Item("Power Bracelets"))
	assert.True(t, logic.Evaluate(w, &loc.Requirement, owned))
}

func TestLoadBuiltinCategories(t *testing.T) {
	w, err := Load(Builtin, 0)
	require.NoError(t, err)

	assert.True(t, w.CategoryEnabled("Island"))
	assert.False(t, w.CategoryEnabled("Dungeon"))
	require.NoError(t, w.EnableSettings("progression_dungeons"))
	assert.True(t, w.CategoryEnabled("Dungeon"))
	assert.False(t, w.CategoryEnabled("Nowhere"))
}

// ruleFiles returns a minimal valid rule set that tests can break one file at a time
func ruleFiles() fstest.MapFS {
	return fstest.MapFS{
		WorldFile: {Data: []byte(`
settings: [flag]
categories:
  - name: Field
goal: Gate
`)},
		ItemsFile: {Data: []byte(`
- name: Sword
  advancement: true
- name: Rupee
  junk: true
  count: 2
`)},
		MacrosFile: {Data: []byte(`
- name: Armed
  needs: Sword
`)},
		LocationsFile: {Data: []byte(`
- name: Chest
  categories: [Field]
  needs: Nothing
- name: Gate
  needs: Armed and can_access(Chest)
`)},
		DungeonsFile: {Data: []byte("[]\n")},
	}
}

func TestLoadMinimal(t *testing.T) {
	w, err := Load(ruleFiles(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, w.ID)
	assert.Len(t, w.ItemPool, 3)
	for _, it := range w.ItemPool {
		assert.Equal(t, 3, it.World)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want error
	}{
		{"schema violation", ItemsFile, "- name: Sword\n  colour: red\n", ErrInvalidRuleSet},
		{"unknown item", LocationsFile, "- name: Chest\n  needs: Shield\n", logic.ErrUnknownSymbol},
		{"duplicate location", LocationsFile, "- name: Chest\n  needs: Nothing\n- name: Chest\n  needs: Nothing\n", world.ErrDuplicateName},
		{"unknown category", LocationsFile, "- name: Chest\n  categories: [Sky]\n  needs: Nothing\n", world.ErrUnknownName},
		{"mixed operators", MacrosFile, "- name: Armed\n  needs: Sword and Sword or Sword\n", logic.ErrMixedOperators},
		{"access cycle", LocationsFile, "- name: Chest\n  needs: can_access(Gate)\n- name: Gate\n  needs: can_access(Chest)\n", logic.ErrAccessCycle},
		{"macro cycle", MacrosFile, "- name: Armed\n  needs: Ready\n- name: Ready\n  needs: Armed\n", logic.ErrMacroCycle},
		{"unknown dungeon", LocationsFile, "- name: Chest\n  dungeon: Cave\n  needs: Nothing\n", world.ErrUnknownName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := ruleFiles()
			fsys[tt.file] = &fstest.MapFile{Data: []byte(tt.data)}
			_, err := Load(fsys, 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var le *LoadError
			assert.True(t, errors.As(err, &le), "error %v is not a LoadError", err)
		})
	}
}

func TestLoadReportsEveryProblem(t *testing.T) {
	fsys := ruleFiles()
	fsys[LocationsFile] = &fstest.MapFile{Data: []byte(`
- name: Chest
  needs: Shield
- name: Gate
  needs: Bow
`)}
	_, err := Load(fsys, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Shield")
	assert.Contains(t, err.Error(), "Bow")
}

func TestLoadMissingFile(t *testing.T) {
	fsys := ruleFiles()
	delete(fsys, MacrosFile)
	_, err := Load(fsys, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MacrosFile)
}
