// Package world provides the item/location registry the logic engine works on.
// Tables are filled by a loader and stay fixed afterwards; only placement state
// on locations changes while a seed is being generated.
package world

import (
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// CategorySet is a set of location category names
type CategorySet = mapset.Set[string]

// Location is a single item check in a world.
type Location struct {
	ID   LocationID
	Name string

	// Categories decide, together with the enabled settings, whether the
	// location may hold progression items.
	Categories  CategorySet
	Requirement Requirement

	CurrentItem  Item
	OriginalItem Item

	Dungeon  string // empty for overworld locations
	Entrance bool   // first room of its dungeon
	RaceMode bool   // boss reward check used by race mode

	Progression bool
	Plandomized bool

	World int
}

// NewLocation creates an empty location
func NewLocation(id LocationID, name string, world int) *Location {
	return &Location{
		ID:         id,
		Name:       name,
		Categories: mapset.New[string](),
		World:      world,
	}
}

// Empty reports whether nothing has been placed here yet
func (l *Location) Empty() bool {
	return l.CurrentItem.Empty()
}

// Place puts an item at the location
func (l *Location) Place(it Item) {
	l.CurrentItem = it
}

// Clear removes the placed item unless it was pre-placed
func (l *Location) Clear() {
	if l.Plandomized {
		return
	}
	l.CurrentItem = Item{}
}

// InDungeon reports whether the location belongs to a dungeon
func (l *Location) InDungeon() bool {
	return l.Dungeon != ""
}

// SortedCategories returns the category names in lexical order
func (l *Location) SortedCategories() []string {
	var out []string
	l.Categories.Each(func(c string) {
		out = append(out, c)
	})
	sort.Strings(out)
	return out
}

// Key identifies a location across worlds
type Key struct {
	World int
	ID    LocationID
}

// Key returns the cross-world key of the location
func (l *Location) Key() Key {
	return Key{World: l.World, ID: l.ID}
}

// SortLocations orders locations by world then table order
func SortLocations(locs []*Location) {
	sort.SliceStable(locs, func(a, b int) bool {
		if locs[a].World != locs[b].World {
			return locs[a].World < locs[b].World
		}
		return locs[a].ID < locs[b].ID
	})
}

// EmptyLocations returns the locations that hold no item, in input order
func EmptyLocations(locs []*Location) []*Location {
	var out []*Location
	for _, l := range locs {
		if l.Empty() {
			out = append(out, l)
		}
	}
	return out
}
