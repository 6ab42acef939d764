package logic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wwrando/pkg/engine/world"
)

type fixture struct {
	w       *world.World
	sword   world.ItemID
	bow     world.ItemID
	key     world.ItemID
	race    world.SettingID
	cut     world.MacroIndex
	chest   *world.Location
	tower   *world.Location
	dungeon *world.Dungeon
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{w: world.NewWorld(0)}
	f.sword = f.w.MustAddItem(world.ItemInfo{Name: "Progressive Sword", Advancement: true})
	f.bow = f.w.MustAddItem(world.ItemInfo{Name: "Hero's Bow", Advancement: true})
	f.key = f.w.MustAddItem(world.ItemInfo{Name: "DRC Small Key", Advancement: true, Key: world.SmallKey, Dungeon: "DRC"})
	var err error
	f.race, err = f.w.DeclareSetting("race_mode")
	require.NoError(t, err)
	f.cut, err = f.w.DeclareMacro("Can Cut Grass")
	require.NoError(t, err)
	f.w.DefineMacro(f.cut, world.Has(f.sword))
	f.chest = f.w.MustAddLocation("Outset Chest", world.Free())
	f.tower = f.w.MustAddLocation("Tower Top", world.MacroRef(f.cut))
	f.dungeon = world.NewDungeon("DRC")
	f.dungeon.SmallKey = f.key
	f.dungeon.KeyCount = 2
	require.NoError(t, f.w.AddDungeon(f.dungeon))
	return f
}

func (f *fixture) inv(ids ...world.ItemID) *world.Inventory {
	inv := world.NewInventory()
	for _, id := range ids {
		inv.Add(world.NewItem(id, f.w.ID))
	}
	return inv
}

func TestEvaluate_Kinds(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		req   world.Requirement
		owned []world.ItemID
		want  bool
	}{
		{"nothing", world.Free(), nil, true},
		{"impossible", world.Never(), []world.ItemID{f.sword}, false},
		{"has missing", world.Has(f.sword), nil, false},
		{"has owned", world.Has(f.sword), []world.ItemID{f.sword}, true},
		{"and", world.AllOf(world.Has(f.sword), world.Has(f.bow)), []world.ItemID{f.sword}, false},
		{"and met", world.AllOf(world.Has(f.sword), world.Has(f.bow)), []world.ItemID{f.sword, f.bow}, true},
		{"or", world.AnyOf(world.Has(f.sword), world.Has(f.bow)), []world.ItemID{f.bow}, true},
		{"or unmet", world.AnyOf(world.Has(f.sword), world.Has(f.bow)), nil, false},
		{"not", world.NotReq(world.Has(f.bow)), nil, true},
		{"count short", world.CountOf(2, f.key), []world.ItemID{f.key}, false},
		{"count met", world.CountOf(2, f.key), []world.ItemID{f.key, f.key}, true},
		{"count zero", world.CountOf(0, f.key), nil, true},
		{"macro", world.MacroRef(f.cut), []world.ItemID{f.sword}, true},
		{"macro unmet", world.MacroRef(f.cut), nil, false},
		{"can_access", world.Access(f.tower.ID), []world.ItemID{f.sword}, true},
		{"can_access unmet", world.Access(f.tower.ID), nil, false},
		{"setting off", world.Flag(f.race), nil, false},
		{"empty and", world.AllOf(), nil, false},
		{"empty or", world.AnyOf(), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(f.w, &tt.req, f.inv(tt.owned...))
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestEvaluate_SettingEnabled(t *testing.T) {
	f := newFixture(t)
	e := NewEvaluator(f.w, world.NewInventory())
	e.Settings = world.NewSettings(f.race)
	req := world.Flag(f.race)
	assert.True(t, e.Evaluate(&req))
}

func TestEvaluate_OtherWorldItemsDoNotCount(t *testing.T) {
	f := newFixture(t)
	owned := world.NewInventory(world.NewItem(f.sword, 1))
	req := world.Has(f.sword)
	assert.False(t, Evaluate(f.w, &req, owned), "sword owned by world 1 must not satisfy world 0")
}

func TestEvaluate_DungeonScope(t *testing.T) {
	f := newFixture(t)
	global := f.inv(f.key, f.key)
	e := NewEvaluator(f.w, global)
	e.Scope = &DungeonScope{World: 0, Dungeon: f.dungeon, Keys: f.inv(f.key)}

	req := world.CountOf(2, f.key)
	assert.False(t, e.Evaluate(&req), "scoped count must ignore keys in the global inventory")

	e.Scope.Keys.Add(world.NewItem(f.key, 0))
	assert.True(t, e.Evaluate(&req))

	sword := world.Has(f.sword)
	e.Owned.Add(world.NewItem(f.sword, 0))
	assert.True(t, e.Evaluate(&sword), "non-key items still come from the global inventory")
}

func TestEvaluate_Monotonic(t *testing.T) {
	f := newFixture(t)
	reqs := []world.Requirement{
		world.AllOf(world.Has(f.sword), world.CountOf(2, f.key)),
		world.AnyOf(world.Has(f.bow), world.MacroRef(f.cut)),
		world.Access(f.tower.ID),
	}
	all := []world.ItemID{f.sword, f.key, f.bow, f.key}
	for _, req := range reqs {
		was := false
		for n := 0; n <= len(all); n++ {
			got := Evaluate(f.w, &req, f.inv(all[:n]...))
			if was && !got {
				t.Fatalf("Evaluate(%s) went from true to false after adding %v", String(f.w, &req), all[n-1])
			}
			was = got
		}
	}
}

func TestParse(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		expr string
		want world.Requirement
	}{
		{"Nothing", world.Free()},
		{"Impossible", world.Never()},
		{"Progressive_Sword", world.Has(f.sword)},
		{"Progressive_Sword and Hero's_Bow", world.AllOf(world.Has(f.sword), world.Has(f.bow))},
		{"Progressive_Sword or (Hero's_Bow and Can_Cut_Grass)",
			world.AnyOf(world.Has(f.sword), world.AllOf(world.Has(f.bow), world.MacroRef(f.cut)))},
		{"count(2, DRC_Small_Key)", world.CountOf(2, f.key)},
		{"can_access(Tower_Top)", world.Access(f.tower.ID)},
		{"setting(race_mode)", world.Flag(f.race)},
		{"not Hero's_Bow", world.NotReq(world.Has(f.bow))},
		{"not Hero's_Bow and Progressive_Sword", world.AllOf(world.NotReq(world.Has(f.bow)), world.Has(f.sword))},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(f.w, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"()", ErrEmpty},
		{"Master_Sword", ErrUnknownSymbol},
		{"can_access(Nowhere)", ErrUnknownSymbol},
		{"setting(nope)", ErrUnknownSymbol},
		{"count(2)", ErrArity},
		{"count(DRC_Small_Key, 2)", ErrArity},
		{"count(1, DRC_Small_Key, Hero's_Bow)", ErrArity},
		{"can_access()", ErrArity},
		{"Progressive_Sword and", ErrEmpty},
		{"and Progressive_Sword", ErrArity},
		{"(Progressive_Sword", ErrUnbalanced},
		{"Progressive_Sword)", ErrUnbalanced},
		{"Progressive_Sword and Hero's_Bow or Nothing", ErrMixedOperators},
		{"Progressive_Sword & Hero's_Bow", ErrUnknownSymbol},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Parse(f.w, tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.expr, err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("Parse(%q) error %T is not a *ParseError", tt.expr, err)
			}
		})
	}
}

func TestParse_NonASCIINames(t *testing.T) {
	f := newFixture(t)
	pokemon := f.w.MustAddItem(world.ItemInfo{Name: "Pokémon", Advancement: true})
	flute := f.w.MustAddItem(world.ItemInfo{Name: "Frühlings Flöte", Advancement: true})

	got, err := Parse(f.w, "Pokémon and (Frühlings_Flöte or count(2, Pokémon))")
	require.NoError(t, err)
	assert.Equal(t, world.AllOf(world.Has(pokemon), world.AnyOf(world.Has(flute), world.CountOf(2, pokemon))), got)
	assert.Equal(t, "Pokémon and (Frühlings_Flöte or count(2, Pokémon))", String(f.w, &got))
}

func TestParse_InvalidUTF8(t *testing.T) {
	f := newFixture(t)
	_, err := Parse(f.w, "Hero's_Bow and Pok\xe9mon")
	require.ErrorIs(t, err, ErrUnknownSymbol)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, len("Hero's_Bow and Pok"), pe.Pos)
}

func TestParse_GenericKeysResolveToDungeon(t *testing.T) {
	f := newFixture(t)
	other := f.w.MustAddItem(world.ItemInfo{Name: "FW Small Key", Advancement: true, Key: world.SmallKey, Dungeon: "FW"})
	fw := world.NewDungeon("FW")
	fw.SmallKey = other

	drcReq, err := (&Parser{World: f.w, Dungeon: f.dungeon}).Parse("count(1, Small_Key)")
	require.NoError(t, err)
	fwReq, err := (&Parser{World: f.w, Dungeon: fw}).Parse("count(1, Small_Key)")
	require.NoError(t, err)

	onlyFW := world.NewInventory(world.NewItem(other, 0))
	assert.False(t, Evaluate(f.w, &drcReq, onlyFW), "FW key must not open a DRC door")
	assert.True(t, Evaluate(f.w, &fwReq, onlyFW))

	_, err = Parse(f.w, "Small_Key")
	assert.ErrorIs(t, err, ErrUnknownSymbol, "generic key outside a dungeon")
}

func TestString_RoundTrip(t *testing.T) {
	f := newFixture(t)
	for _, expr := range []string{
		"Progressive_Sword and (Hero's_Bow or count(2, DRC_Small_Key))",
		"not (Can_Cut_Grass or setting(race_mode))",
		"can_access(Tower_Top) and Nothing",
		"Impossible",
	} {
		req, err := Parse(f.w, expr)
		require.NoError(t, err)
		assert.Equal(t, expr, String(f.w, &req))
	}
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	bad := []world.Requirement{
		world.AllOf(),
		world.AnyOf(),
		{Kind: world.Not},
		world.Has(world.ItemID(999)),
		world.Access(world.LocationID(999)),
		world.Flag(world.SettingID(42)),
		world.MacroRef(world.MacroIndex(7)),
		{Kind: world.Kind(99)},
	}
	for _, req := range bad {
		if err := Validate(f.w, &req); err == nil {
			t.Errorf("Validate(%+v) = nil, want error", req)
		}
	}
	good := world.AllOf(world.Has(f.sword), world.AnyOf(world.MacroRef(f.cut), world.Never()))
	assert.NoError(t, Validate(f.w, &good))
}

func TestCheckCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		f := newFixture(t)
		f.w.MustAddLocation("Above Tower", world.Access(f.tower.ID))
		assert.NoError(t, CheckCycles(f.w))
	})
	t.Run("location loop", func(t *testing.T) {
		f := newFixture(t)
		a := f.w.MustAddLocation("A", world.Free())
		b := f.w.MustAddLocation("B", world.Access(a.ID))
		a.Requirement = world.AllOf(world.Has(f.sword), world.Access(b.ID))
		assert.ErrorIs(t, CheckCycles(f.w), ErrAccessCycle)
	})
	t.Run("through macro", func(t *testing.T) {
		f := newFixture(t)
		m, err := f.w.DeclareMacro("Reach Tower")
		require.NoError(t, err)
		f.w.DefineMacro(m, world.Access(f.tower.ID))
		f.tower.Requirement = world.MacroRef(m)
		assert.ErrorIs(t, CheckCycles(f.w), ErrAccessCycle)
	})
	t.Run("macro only", func(t *testing.T) {
		f := newFixture(t)
		f.w.DefineMacro(f.cut, world.AnyOf(world.Has(f.sword), world.MacroRef(f.cut)))
		assert.ErrorIs(t, CheckCycles(f.w), ErrMacroCycle)
	})
}

func TestEvaluate_CycleTerminates(t *testing.T) {
	f := newFixture(t)
	a := f.w.MustAddLocation("A", world.Free())
	a.Requirement = world.Access(a.ID)
	assert.False(t, Evaluate(f.w, &a.Requirement, world.NewInventory()))
}
