package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrDuplicateName is returned when a table already holds an entry with the same name
	ErrDuplicateName = errors.New("duplicate name")
	// ErrUnknownName is returned when a name does not resolve to a table entry
	ErrUnknownName = errors.New("unknown name")
)

// World is the registry for a single player's world: item, location, macro,
// setting and dungeon tables, plus the per-world pools used by placement.
type World struct {
	ID       int
	Settings Settings

	items     []ItemInfo
	itemIndex map[string]ItemID

	locations     []*Location
	locationIndex map[string]LocationID

	macros     []Requirement
	macroNames []string
	macroIndex map[string]MacroIndex

	settingNames []string
	settingIndex map[string]SettingID

	categories    CategorySet
	categoryFlags map[string]SettingID

	Dungeons     []*Dungeon
	dungeonIndex map[string]int

	Goal    LocationID
	HasGoal bool

	// RaceModeItems is the priority list tried for race mode boss checks
	RaceModeItems []ItemID
	// JunkItems fill whatever locations remain after the item pool is placed
	JunkItems []ItemID

	StartingItems []Item
	ItemPool      []Item
}

// NewWorld creates an empty registry. The reserved None and Nothing items are
// always present.
func NewWorld(id int) *World {
	w := &World{
		ID:            id,
		Settings:      NewSettings(),
		itemIndex:     make(map[string]ItemID),
		locationIndex: make(map[string]LocationID),
		macroIndex:    make(map[string]MacroIndex),
		settingIndex:  make(map[string]SettingID),
		categories:    mapset.New[string](),
		categoryFlags: make(map[string]SettingID),
		dungeonIndex:  make(map[string]int),
	}
	w.items = append(w.items, ItemInfo{Name: ""}, ItemInfo{Name: "Nothing"})
	w.itemIndex["Nothing"] = Nothing
	return w
}

// AddItem registers an item and returns its id
func (w *World) AddItem(info ItemInfo) (ItemID, error) {
	if _, ok := w.itemIndex[info.Name]; ok {
		return None, fmt.Errorf("item %q: %w", info.Name, ErrDuplicateName)
	}
	id := ItemID(len(w.items))
	w.items = append(w.items, info)
	w.itemIndex[info.Name] = id
	return id, nil
}

// MustAddItem is AddItem for hand-built worlds; it panics on duplicates
func (w *World) MustAddItem(info ItemInfo) ItemID {
	id, err := w.AddItem(info)
	if err != nil {
		panic(err)
	}
	return id
}

// ItemByName resolves an item name
func (w *World) ItemByName(name string) (ItemID, bool) {
	id, ok := w.itemIndex[name]
	return id, ok
}

// ItemInfo returns the table entry for id
func (w *World) ItemInfo(id ItemID) ItemInfo {
	if id < 0 || int(id) >= len(w.items) {
		return ItemInfo{}
	}
	return w.items[id]
}

// ItemName returns the display name for id
func (w *World) ItemName(id ItemID) string {
	return w.ItemInfo(id).Name
}

// IsAdvancement reports whether the item can unlock logic
func (w *World) IsAdvancement(id ItemID) bool {
	return w.ItemInfo(id).Advancement
}

// ItemCount returns the size of the item table including reserved entries
func (w *World) ItemCount() int {
	return len(w.items)
}

// AddLocation registers a location and returns it
func (w *World) AddLocation(name string) (*Location, error) {
	if _, ok := w.locationIndex[name]; ok {
		return nil, fmt.Errorf("location %q: %w", name, ErrDuplicateName)
	}
	loc := NewLocation(LocationID(len(w.locations)), name, w.ID)
	w.locations = append(w.locations, loc)
	w.locationIndex[name] = loc.ID
	return loc, nil
}

// MustAddLocation is AddLocation for hand-built worlds; it panics on duplicates
func (w *World) MustAddLocation(name string, req Requirement) *Location {
	loc, err := w.AddLocation(name)
	if err != nil {
		panic(err)
	}
	loc.Requirement = req
	return loc
}

// Location returns the location with the given id
func (w *World) Location(id LocationID) *Location {
	if id < 0 || int(id) >= len(w.locations) {
		return nil
	}
	return w.locations[id]
}

// LocationByName resolves a location name
func (w *World) LocationByName(name string) (*Location, bool) {
	id, ok := w.locationIndex[name]
	if !ok {
		return nil, false
	}
	return w.locations[id], true
}

// Locations returns every location in table order
func (w *World) Locations() []*Location {
	return w.locations
}

// DeclareMacro reserves a macro slot so that bodies can reference it before it is defined
func (w *World) DeclareMacro(name string) (MacroIndex, error) {
	if _, ok := w.macroIndex[name]; ok {
		return 0, fmt.Errorf("macro %q: %w", name, ErrDuplicateName)
	}
	idx := MacroIndex(len(w.macros))
	w.macros = append(w.macros, Never())
	w.macroNames = append(w.macroNames, name)
	w.macroIndex[name] = idx
	return idx, nil
}

// DefineMacro sets the body of a declared macro
func (w *World) DefineMacro(idx MacroIndex, body Requirement) {
	w.macros[idx] = body
}

// MacroByName resolves a macro name
func (w *World) MacroByName(name string) (MacroIndex, bool) {
	idx, ok := w.macroIndex[name]
	return idx, ok
}

// MacroBody returns the body of a macro
func (w *World) MacroBody(idx MacroIndex) *Requirement {
	if idx < 0 || int(idx) >= len(w.macros) {
		return nil
	}
	return &w.macros[idx]
}

// MacroName returns the name of a macro
func (w *World) MacroName(idx MacroIndex) string {
	if idx < 0 || int(idx) >= len(w.macroNames) {
		return ""
	}
	return w.macroNames[idx]
}

// MacroCount returns the number of declared macros
func (w *World) MacroCount() int {
	return len(w.macros)
}

// DeclareSetting registers a setting flag name
func (w *World) DeclareSetting(name string) (SettingID, error) {
	if _, ok := w.settingIndex[name]; ok {
		return 0, fmt.Errorf("setting %q: %w", name, ErrDuplicateName)
	}
	id := SettingID(len(w.settingNames))
	w.settingNames = append(w.settingNames, name)
	w.settingIndex[name] = id
	return id, nil
}

// SettingByName resolves a setting flag name
func (w *World) SettingByName(name string) (SettingID, bool) {
	id, ok := w.settingIndex[name]
	return id, ok
}

// SettingName returns the name of a setting flag
func (w *World) SettingName(id SettingID) string {
	if id < 0 || int(id) >= len(w.settingNames) {
		return ""
	}
	return w.settingNames[id]
}

// SettingNames returns every declared flag in declaration order
func (w *World) SettingNames() []string {
	return w.settingNames
}

// EnableSettings replaces the world's settings with the named flags enabled
func (w *World) EnableSettings(names ...string) error {
	var ids []SettingID
	for _, n := range names {
		id, ok := w.settingIndex[n]
		if !ok {
			return fmt.Errorf("setting %q: %w", n, ErrUnknownName)
		}
		ids = append(ids, id)
	}
	raceDungeons := w.Settings.RaceModeDungeons
	w.Settings = NewSettings(ids...)
	w.Settings.RaceModeDungeons = raceDungeons
	return nil
}

// FlagEnabled reports whether the named flag is declared and enabled
func (w *World) FlagEnabled(name string) bool {
	id, ok := w.settingIndex[name]
	return ok && w.Settings.Enabled(id)
}

// AddCategory declares a location category
func (w *World) AddCategory(name string) {
	w.categories.Put(name)
}

// GateCategory ties a category to a setting flag. Locations in the category
// only count as progression locations while the flag is on.
func (w *World) GateCategory(name string, flag SettingID) {
	w.categories.Put(name)
	w.categoryFlags[name] = flag
}

// HasCategory reports whether a category has been declared
func (w *World) HasCategory(name string) bool {
	return w.categories.Has(name)
}

// Categories returns the declared categories in lexical order
func (w *World) Categories() []string {
	var out []string
	w.categories.Each(func(c string) {
		out = append(out, c)
	})
	sort.Strings(out)
	return out
}

// CategoryGate returns the setting gating a category
func (w *World) CategoryGate(name string) (SettingID, bool) {
	flag, ok := w.categoryFlags[name]
	return flag, ok
}

// CategoryEnabled reports whether the category's gating flag is on. Ungated
// categories are always enabled.
func (w *World) CategoryEnabled(name string) bool {
	flag, ok := w.categoryFlags[name]
	if !ok {
		return w.categories.Has(name)
	}
	return w.Settings.Enabled(flag)
}

// AddDungeon registers a dungeon
func (w *World) AddDungeon(d *Dungeon) error {
	if _, ok := w.dungeonIndex[d.Name]; ok {
		return fmt.Errorf("dungeon %q: %w", d.Name, ErrDuplicateName)
	}
	w.dungeonIndex[d.Name] = len(w.Dungeons)
	w.Dungeons = append(w.Dungeons, d)
	return nil
}

// Dungeon resolves a dungeon name
func (w *World) Dungeon(name string) (*Dungeon, bool) {
	i, ok := w.dungeonIndex[name]
	if !ok {
		return nil, false
	}
	return w.Dungeons[i], true
}

// DungeonLocations returns the locations of a dungeon in table order
func (w *World) DungeonLocations(d *Dungeon) []*Location {
	out := make([]*Location, 0, len(d.Locations))
	for _, id := range d.Locations {
		out = append(out, w.locations[id])
	}
	return out
}

// ClearPlacements empties every location that was not pre-placed
func (w *World) ClearPlacements() {
	for _, loc := range w.locations {
		loc.Clear()
	}
}

// Item returns an item of this world by name; it is the zero Item when unknown
func (w *World) Item(name string) Item {
	id, ok := w.itemIndex[name]
	if !ok {
		return Item{}
	}
	return NewItem(id, w.ID)
}

// AllLocations flattens the locations of several worlds in world order
func AllLocations(worlds []*World) []*Location {
	var out []*Location
	for _, w := range worlds {
		out = append(out, w.locations...)
	}
	return out
}
