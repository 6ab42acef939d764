package world

import (
	"fmt"
	"sort"
)

// ItemID indexes a world's item table.
type ItemID int

// Reserved item ids. Loaded items start at FirstItemID.
const (
	None ItemID = iota
	Nothing
	FirstItemID
)

// KeyKind classifies dungeon-bound items
type KeyKind int

const (
	NotDungeonItem KeyKind = iota
	SmallKey
	BigKey
	DungeonMap
	Compass
)

func (k KeyKind) String() string {
	switch k {
	case SmallKey:
		return "small key"
	case BigKey:
		return "big key"
	case DungeonMap:
		return "map"
	case Compass:
		return "compass"
	default:
		return "none"
	}
}

// Item is an item identifier together with the world that owns it.
// The zero value is the empty slot.
type Item struct {
	ID    ItemID
	World int
}

// NewItem creates an item owned by the given world
func NewItem(id ItemID, world int) Item {
	return Item{ID: id, World: world}
}

// Empty reports whether the item is the empty slot
func (i Item) Empty() bool {
	return i.ID == None
}

func (i Item) String() string {
	return fmt.Sprintf("%d@%d", i.ID, i.World)
}

// ItemInfo describes one entry of the item table
type ItemInfo struct {
	Name        string
	GameID      uint8
	Advancement bool
	Junk        bool
	Key         KeyKind
	Dungeon     string
}

// Inventory is a multiset of owned items
type Inventory struct {
	counts map[Item]int
	size   int
}

// NewInventory creates an inventory holding the given items
func NewInventory(items ...Item) *Inventory {
	inv := &Inventory{counts: make(map[Item]int, len(items))}
	for _, it := range items {
		inv.Add(it)
	}
	return inv
}

// Add adds one copy of the item
func (inv *Inventory) Add(it Item) {
	if it.Empty() {
		return
	}
	inv.counts[it]++
	inv.size++
}

// AddAll adds one copy of every item
func (inv *Inventory) AddAll(items []Item) {
	for _, it := range items {
		inv.Add(it)
	}
}

// Remove removes a single copy of the item and reports whether one was present
func (inv *Inventory) Remove(it Item) bool {
	n := inv.counts[it]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(inv.counts, it)
	} else {
		inv.counts[it] = n - 1
	}
	inv.size--
	return true
}

// Count returns how many copies of the item are owned
func (inv *Inventory) Count(it Item) int {
	if inv == nil {
		return 0
	}
	return inv.counts[it]
}

// Has reports whether at least one copy is owned
func (inv *Inventory) Has(it Item) bool {
	return inv.Count(it) > 0
}

// Len returns the total number of copies held
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return inv.size
}

// Clone returns an independent copy
func (inv *Inventory) Clone() *Inventory {
	out := &Inventory{counts: make(map[Item]int, len(inv.counts)), size: inv.size}
	for it, n := range inv.counts {
		out.counts[it] = n
	}
	return out
}

// Items returns every copy held, ordered by world then id
func (inv *Inventory) Items() []Item {
	keys := make([]Item, 0, len(inv.counts))
	for it := range inv.counts {
		keys = append(keys, it)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].World != keys[b].World {
			return keys[a].World < keys[b].World
		}
		return keys[a].ID < keys[b].ID
	})
	out := make([]Item, 0, inv.size)
	for _, it := range keys {
		for n := inv.counts[it]; n > 0; n-- {
			out = append(out, it)
		}
	}
	return out
}

// RemoveItem removes the first copy of it from pool and returns the shortened pool
func RemoveItem(pool []Item, it Item) ([]Item, bool) {
	for i, p := range pool {
		if p == it {
			return append(pool[:i:i], pool[i+1:]...), true
		}
	}
	return pool, false
}
