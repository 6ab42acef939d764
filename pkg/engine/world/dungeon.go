package world

// Dungeon groups locations that share small keys, a big key, a map and a compass.
type Dungeon struct {
	Name      string
	Locations []LocationID

	SmallKey ItemID
	BigKey   ItemID
	Map      ItemID
	Compass  ItemID
	KeyCount int

	RaceModeLocation LocationID
	HasRaceMode      bool
	EntranceLocation LocationID
	HasEntrance      bool
}

// NewDungeon creates a dungeon without keys or locations
func NewDungeon(name string) *Dungeon {
	return &Dungeon{Name: name}
}

// OwnsKey reports whether id is this dungeon's small or big key
func (d *Dungeon) OwnsKey(id ItemID) bool {
	if id == None {
		return false
	}
	return id == d.SmallKey || id == d.BigKey
}

// KeyItems returns every copy of the dungeon's keys for the given owner
func (d *Dungeon) KeyItems(world int) []Item {
	var out []Item
	for i := 0; i < d.KeyCount && d.SmallKey != None; i++ {
		out = append(out, NewItem(d.SmallKey, world))
	}
	if d.BigKey != None {
		out = append(out, NewItem(d.BigKey, world))
	}
	return out
}

// LocalItems returns the dungeon's map and compass for the given owner
func (d *Dungeon) LocalItems(world int) []Item {
	var out []Item
	if d.Map != None {
		out = append(out, NewItem(d.Map, world))
	}
	if d.Compass != None {
		out = append(out, NewItem(d.Compass, world))
	}
	return out
}

// DungeonState tracks how far dungeon-constrained placement has got for one dungeon
type DungeonState int

const (
	Unprocessed DungeonState = iota
	RaceItemAttempted
	KeysPlaced
	NonKeyItemsPlaced
	Done
)

func (s DungeonState) String() string {
	switch s {
	case Unprocessed:
		return "unprocessed"
	case RaceItemAttempted:
		return "race item attempted"
	case KeysPlaced:
		return "keys placed"
	case NonKeyItemsPlaced:
		return "non-key items placed"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}
