package fill

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwrando/pkg/engine/rng"
	"wwrando/pkg/engine/search"
	"wwrando/pkg/engine/world"
)

func placements(worlds []*world.World) map[string]string {
	out := make(map[string]string)
	for _, loc := range world.AllLocations(worlds) {
		name := ""
		if !loc.Empty() {
			name = worlds[loc.CurrentItem.World].ItemName(loc.CurrentItem.ID)
		}
		out[fmt.Sprintf("%d/%s", loc.World, loc.Name)] = name
	}
	return out
}

func assertEachItemOnce(t *testing.T, worlds []*world.World, items []world.Item) {
	t.Helper()
	placed := world.NewInventory()
	for _, loc := range world.AllLocations(worlds) {
		placed.Add(loc.CurrentItem)
	}
	want := world.NewInventory(items...)
	if diff := cmp.Diff(want.Items(), placed.Items()); diff != "" {
		t.Errorf("placed items differ from pool (-want +got):\n%s", diff)
	}
}

func TestAssumedFill_KeyNeverLocksItself(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		w := world.NewWorld(0)
		key := w.MustAddItem(world.ItemInfo{Name: "Key", Advancement: true})
		w.MustAddItem(world.ItemInfo{Name: "Sword", Advancement: true})
		a := w.MustAddLocation("A", world.Has(key))
		w.MustAddLocation("B", world.Free())
		w.MustAddLocation("C", world.Free())
		worlds := []*world.World{w}
		items := []world.Item{w.Item("Key"), w.Item("Sword")}

		require.NoError(t, AssumedFill(worlds, rng.New(seed), items, w.Locations(), nil))
		if a.CurrentItem.ID == key {
			t.Fatalf("seed %d: Key placed at A, which needs Key", seed)
		}
		assertEachItemOnce(t, worlds, items)
	}
}

// lockWorld builds a chain of rooms where each room needs the previous room's
// item, plus one free side chest per room so that a fill can never run dry.
func lockWorld(t *testing.T, id, rooms int) ([]*world.World, []world.Item) {
	t.Helper()
	w := world.NewWorld(id)
	var items []world.Item
	prev := world.Free()
	for i := 0; i < rooms; i++ {
		itemID := w.MustAddItem(world.ItemInfo{Name: fmt.Sprintf("Item %d", i), Advancement: true})
		w.MustAddLocation(fmt.Sprintf("Room %d", i), prev)
		w.MustAddLocation(fmt.Sprintf("Side %d", i), world.Free())
		prev = world.Has(itemID)
		items = append(items, world.NewItem(itemID, id))
	}
	goal := w.MustAddLocation("Goal", prev)
	w.Goal = goal.ID
	w.HasGoal = true
	return []*world.World{w}, items
}

func TestAssumedFill_CompleteAndBeatable(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		worlds, items := lockWorld(t, 0, 6)
		err := AssumedFill(worlds, rng.New(seed), items, worlds[0].Locations(), nil)
		require.NoError(t, err, "seed %d", seed)
		assertEachItemOnce(t, worlds, items)
		assert.True(t, search.Beatable(worlds, nil), "seed %d not beatable", seed)
	}
}

func TestAssumedFill_Safety(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		worlds, items := lockWorld(t, 0, 5)
		require.NoError(t, AssumedFill(worlds, rng.New(seed), items, worlds[0].Locations(), nil))
		res := search.Search(worlds, nil, search.Options{})
		for _, loc := range worlds[0].Locations() {
			if !loc.Empty() && !res.Reached(loc) {
				t.Fatalf("seed %d: %s holds an item but is unreachable", seed, loc.Name)
			}
		}
	}
}

func TestAssumedFill_Deterministic(t *testing.T) {
	w1, items1 := lockWorld(t, 0, 8)
	w2, items2 := lockWorld(t, 0, 8)
	require.NoError(t, AssumedFill(w1, rng.FromString("same seed"), items1, w1[0].Locations(), nil))
	require.NoError(t, AssumedFill(w2, rng.FromString("same seed"), items2, w2[0].Locations(), nil))
	if diff := cmp.Diff(placements(w1), placements(w2)); diff != "" {
		t.Errorf("equal seeds gave different fills (-first +second):\n%s", diff)
	}
}

func TestAssumedFill_Multiworld(t *testing.T) {
	a, itemsA := lockWorld(t, 0, 4)
	b, itemsB := lockWorld(t, 1, 4)
	worlds := []*world.World{a[0], b[0]}
	items := append(append([]world.Item(nil), itemsA...), itemsB...)
	require.NoError(t, AssumedFill(worlds, rng.New(3), items, world.AllLocations(worlds), nil))
	assertEachItemOnce(t, worlds, items)
	assert.True(t, search.Beatable(worlds, nil))
}

func TestAssumedFill_NoReachableLocation(t *testing.T) {
	w := world.NewWorld(0)
	key := w.MustAddItem(world.ItemInfo{Name: "Key", Advancement: true})
	w.MustAddLocation("Locked", world.Has(key))
	err := AssumedFill([]*world.World{w}, rng.New(1), []world.Item{w.Item("Key")}, w.Locations(), nil)
	require.ErrorIs(t, err, ErrNoReachableLocation)
	var pe *PlacementError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Key", pe.Name)
}

func TestAssumedFill_MoreItemsThanLocations(t *testing.T) {
	worlds, items := lockWorld(t, 0, 3)
	locs := worlds[0].Locations()[:2]
	err := AssumedFill(worlds, rng.New(1), items, locs, nil)
	assert.ErrorIs(t, err, ErrMoreItemsThanLocations)
	for _, loc := range locs {
		assert.True(t, loc.Empty(), "nothing may be placed when the pool does not fit")
	}
}

func TestAssumedFill_KeepsPlandomized(t *testing.T) {
	worlds, items := lockWorld(t, 0, 3)
	w := worlds[0]
	first, _ := w.LocationByName("Room 0")
	first.Place(items[0])
	first.Plandomized = true

	require.NoError(t, AssumedFill(worlds, rng.New(5), items[1:], w.Locations(), nil))
	assert.Equal(t, items[0], first.CurrentItem)
	assertEachItemOnce(t, worlds, items)
}

func TestAssumedFill_AssumedItemsOpenLocations(t *testing.T) {
	w := world.NewWorld(0)
	hook := w.MustAddItem(world.ItemInfo{Name: "Hook", Advancement: true})
	w.MustAddItem(world.ItemInfo{Name: "Rupee"})
	w.MustAddLocation("Ledge", world.Has(hook))
	worlds := []*world.World{w}
	err := AssumedFill(worlds, rng.New(1), []world.Item{w.Item("Rupee")}, w.Locations(), []world.Item{w.Item("Hook")})
	require.NoError(t, err)
}

func TestFastFill(t *testing.T) {
	w := world.NewWorld(0)
	w.MustAddItem(world.ItemInfo{Name: "Rupee"})
	for i := 0; i < 4; i++ {
		w.MustAddLocation(fmt.Sprintf("L%d", i), world.Never())
	}
	items := []world.Item{w.Item("Rupee"), w.Item("Rupee")}
	require.NoError(t, FastFill(rng.New(1), items, w.Locations()))
	assert.Len(t, world.EmptyLocations(w.Locations()), 2)

	err := FastFill(rng.New(1), append(items, items...), w.Locations())
	assert.ErrorIs(t, err, ErrMoreItemsThanLocations)
}

func TestFillRemaining(t *testing.T) {
	w := world.NewWorld(0)
	w.MustAddItem(world.ItemInfo{Name: "Rupee", Junk: true})
	for i := 0; i < 3; i++ {
		w.MustAddLocation(fmt.Sprintf("L%d", i), world.Free())
	}
	require.NoError(t, FillRemaining(rng.New(1), []world.Item{w.Item("Rupee")}, w.Locations()))
	assert.Empty(t, world.EmptyLocations(w.Locations()))

	w.MustAddLocation("Late", world.Free())
	assert.ErrorIs(t, FillRemaining(rng.New(1), nil, w.Locations()), ErrNoReachableLocation)
}
