package data

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"wwrando/pkg/engine/logic"
	"wwrando/pkg/engine/world"
)

// LoadError reports a problem with one entry of a rule set file
type LoadError struct {
	File  string
	Entry string
	Err   error
}

func (e *LoadError) Error() string {
	if e.Entry == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Entry, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrInvalidRuleSet wraps schema violations
var ErrInvalidRuleSet = errors.New("invalid rule set")

type worldFile struct {
	Settings   []string       `yaml:"settings"`
	Categories []categoryFile `yaml:"categories"`
	Goal       string         `yaml:"goal"`
	RaceItems  []string       `yaml:"race_mode_items"`
	JunkItems  []string       `yaml:"junk_items"`
}

type categoryFile struct {
	Name    string `yaml:"name"`
	Setting string `yaml:"setting"`
}

type itemFile struct {
	Name        string `yaml:"name"`
	GameID      uint8  `yaml:"game_id"`
	Advancement bool   `yaml:"advancement"`
	Junk        bool   `yaml:"junk"`
	Count       *int   `yaml:"count"`
	Key         string `yaml:"key"`
	Dungeon     string `yaml:"dungeon"`
}

type macroFile struct {
	Name  string `yaml:"name"`
	Needs string `yaml:"needs"`
}

type locationFile struct {
	Name         string   `yaml:"name"`
	Categories   []string `yaml:"categories"`
	Needs        string   `yaml:"needs"`
	OriginalItem string   `yaml:"original_item"`
	Dungeon      string   `yaml:"dungeon"`
	Entrance     bool     `yaml:"entrance"`
	RaceMode     bool     `yaml:"race_mode"`
}

type dungeonFile struct {
	Name     string `yaml:"name"`
	SmallKey string `yaml:"small_key"`
	KeyCount int    `yaml:"key_count"`
	BigKey   string `yaml:"big_key"`
	Map      string `yaml:"map"`
	Compass  string `yaml:"compass"`
}

var keyKinds = map[string]world.KeyKind{
	"small_key": world.SmallKey,
	"big_key":   world.BigKey,
	"map":       world.DungeonMap,
	"compass":   world.Compass,
}

// ruleSet is the raw content of a rule set directory
type ruleSet struct {
	world     worldFile
	items     []itemFile
	macros    []macroFile
	locations []locationFile
	dungeons  []dungeonFile
}

// Load reads the rule set in fsys and builds the world with the given id.
// Every problem found is reported; the returned error combines them.
func Load(fsys fs.FS, id int) (*world.World, error) {
	rs, err := readRuleSet(fsys)
	if err != nil {
		return nil, err
	}
	b := &builder{w: world.NewWorld(id), rs: rs}
	b.build()
	if b.err != nil {
		return nil, b.err
	}
	return b.w, nil
}

func readRuleSet(fsys fs.FS) (*ruleSet, error) {
	rs := &ruleSet{}
	var errs error
	errs = multierr.Append(errs, readFile(fsys, WorldFile, &rs.world))
	errs = multierr.Append(errs, readFile(fsys, ItemsFile, &rs.items))
	errs = multierr.Append(errs, readFile(fsys, MacrosFile, &rs.macros))
	errs = multierr.Append(errs, readFile(fsys, LocationsFile, &rs.locations))
	errs = multierr.Append(errs, readFile(fsys, DungeonsFile, &rs.dungeons))
	if errs != nil {
		return nil, errs
	}
	return rs, nil
}

// readFile validates a YAML document against its schema and decodes it into out
func readFile(fsys fs.FS, name string, out any) error {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return &LoadError{File: name, Err: err}
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return &LoadError{File: name, Err: err}
	}
	sch, err := schemaFor(name)
	if err != nil {
		return &LoadError{File: name, Err: err}
	}
	if err := sch.Validate(doc); err != nil {
		return &LoadError{File: name, Err: fmt.Errorf("%w: %v", ErrInvalidRuleSet, err)}
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return &LoadError{File: name, Err: err}
	}
	return nil
}

type builder struct {
	w   *world.World
	rs  *ruleSet
	err error
}

func (b *builder) fail(file, entry string, err error) {
	b.err = multierr.Append(b.err, &LoadError{File: file, Entry: entry, Err: err})
}

func (b *builder) build() {
	b.settings()
	b.items()
	b.dungeons()
	b.locations()
	b.macros()
	if b.err != nil {
		// Requirements reference every table above
		return
	}
	b.requirements()
	b.extras()
	if b.err != nil {
		return
	}
	if err := logic.CheckCycles(b.w); err != nil {
		b.fail(LocationsFile, "", err)
		return
	}
	b.itemPool()
}

func (b *builder) settings() {
	for _, name := range b.rs.world.Settings {
		if _, err := b.w.DeclareSetting(name); err != nil {
			b.fail(WorldFile, name, err)
		}
	}
	for _, c := range b.rs.world.Categories {
		if c.Setting == "" {
			b.w.AddCategory(c.Name)
			continue
		}
		flag, ok := b.w.SettingByName(c.Setting)
		if !ok {
			b.fail(WorldFile, c.Name, fmt.Errorf("setting %q: %w", c.Setting, world.ErrUnknownName))
			continue
		}
		b.w.GateCategory(c.Name, flag)
	}
}

func (b *builder) items() {
	for _, it := range b.rs.items {
		info := world.ItemInfo{
			Name:        it.Name,
			GameID:      it.GameID,
			Advancement: it.Advancement,
			Junk:        it.Junk,
			Key:         keyKinds[it.Key],
			Dungeon:     it.Dungeon,
		}
		if info.Key != world.NotDungeonItem && info.Dungeon == "" {
			b.fail(ItemsFile, it.Name, errors.New("dungeon items need a dungeon"))
			continue
		}
		if _, err := b.w.AddItem(info); err != nil {
			b.fail(ItemsFile, it.Name, err)
		}
	}
}

func (b *builder) dungeonItem(d, name string, kind world.KeyKind) world.ItemID {
	if name == "" {
		return world.None
	}
	id, ok := b.w.ItemByName(name)
	if !ok {
		b.fail(DungeonsFile, d, fmt.Errorf("item %q: %w", name, world.ErrUnknownName))
		return world.None
	}
	info := b.w.ItemInfo(id)
	if info.Key != kind || info.Dungeon != d {
		b.fail(DungeonsFile, d, fmt.Errorf("item %q is not this dungeon's %s", name, kind))
		return world.None
	}
	return id
}

func (b *builder) dungeons() {
	for _, df := range b.rs.dungeons {
		d := world.NewDungeon(df.Name)
		d.SmallKey = b.dungeonItem(df.Name, df.SmallKey, world.SmallKey)
		d.BigKey = b.dungeonItem(df.Name, df.BigKey, world.BigKey)
		d.Map = b.dungeonItem(df.Name, df.Map, world.DungeonMap)
		d.Compass = b.dungeonItem(df.Name, df.Compass, world.Compass)
		d.KeyCount = df.KeyCount
		if d.KeyCount > 0 && d.SmallKey == world.None {
			b.fail(DungeonsFile, df.Name, errors.New("key_count without a small key"))
		}
		if err := b.w.AddDungeon(d); err != nil {
			b.fail(DungeonsFile, df.Name, err)
		}
	}
	for _, it := range b.rs.items {
		if it.Dungeon == "" {
			continue
		}
		if _, ok := b.w.Dungeon(it.Dungeon); !ok {
			b.fail(ItemsFile, it.Name, fmt.Errorf("dungeon %q: %w", it.Dungeon, world.ErrUnknownName))
		}
	}
}

// locations registers every location name so requirements can refer to
// locations declared later in the file
func (b *builder) locations() {
	for _, lf := range b.rs.locations {
		loc, err := b.w.AddLocation(lf.Name)
		if err != nil {
			b.fail(LocationsFile, lf.Name, err)
			continue
		}
		for _, c := range lf.Categories {
			if !b.w.HasCategory(c) {
				b.fail(LocationsFile, lf.Name, fmt.Errorf("category %q: %w", c, world.ErrUnknownName))
				continue
			}
			loc.Categories.Put(c)
		}
		loc.Entrance = lf.Entrance
		loc.RaceMode = lf.RaceMode
		if lf.Dungeon == "" {
			if lf.Entrance || lf.RaceMode {
				b.fail(LocationsFile, lf.Name, errors.New("entrance and race_mode need a dungeon"))
			}
			continue
		}
		d, ok := b.w.Dungeon(lf.Dungeon)
		if !ok {
			b.fail(LocationsFile, lf.Name, fmt.Errorf("dungeon %q: %w", lf.Dungeon, world.ErrUnknownName))
			continue
		}
		loc.Dungeon = d.Name
		d.Locations = append(d.Locations, loc.ID)
		if lf.Entrance {
			if d.HasEntrance {
				b.fail(LocationsFile, lf.Name, fmt.Errorf("dungeon %q already has an entrance", d.Name))
			}
			d.EntranceLocation, d.HasEntrance = loc.ID, true
		}
		if lf.RaceMode {
			if d.HasRaceMode {
				b.fail(LocationsFile, lf.Name, fmt.Errorf("dungeon %q already has a race mode location", d.Name))
			}
			d.RaceModeLocation, d.HasRaceMode = loc.ID, true
		}
	}
}

// macros declares every name first, then parses the bodies, so macros may
// reference each other in any order
func (b *builder) macros() {
	idx := make([]world.MacroIndex, len(b.rs.macros))
	ok := make([]bool, len(b.rs.macros))
	for i, m := range b.rs.macros {
		if _, clash := b.w.ItemByName(m.Name); clash {
			b.fail(MacrosFile, m.Name, fmt.Errorf("shadows an item: %w", world.ErrDuplicateName))
			continue
		}
		var err error
		idx[i], err = b.w.DeclareMacro(m.Name)
		if err != nil {
			b.fail(MacrosFile, m.Name, err)
			continue
		}
		ok[i] = true
	}
	for i, m := range b.rs.macros {
		if !ok[i] {
			continue
		}
		req, err := logic.Parse(b.w, m.Needs)
		if err != nil {
			b.fail(MacrosFile, m.Name, err)
			continue
		}
		b.w.DefineMacro(idx[i], req)
	}
}

func (b *builder) requirements() {
	for _, lf := range b.rs.locations {
		loc, _ := b.w.LocationByName(lf.Name)
		p := &logic.Parser{World: b.w}
		if d, ok := b.w.Dungeon(lf.Dungeon); ok {
			p.Dungeon = d
		}
		req, err := p.Parse(lf.Needs)
		if err != nil {
			b.fail(LocationsFile, lf.Name, err)
			continue
		}
		loc.Requirement = req
	}
}

func (b *builder) extras() {
	for _, lf := range b.rs.locations {
		if lf.OriginalItem == "" {
			continue
		}
		loc, _ := b.w.LocationByName(lf.Name)
		it := b.w.Item(lf.OriginalItem)
		if it.Empty() {
			b.fail(LocationsFile, lf.Name, fmt.Errorf("original item %q: %w", lf.OriginalItem, world.ErrUnknownName))
			continue
		}
		loc.OriginalItem = it
	}
	wf := b.rs.world
	if wf.Goal != "" {
		goal, ok := b.w.LocationByName(wf.Goal)
		if !ok {
			b.fail(WorldFile, "goal", fmt.Errorf("location %q: %w", wf.Goal, world.ErrUnknownName))
		} else {
			b.w.Goal, b.w.HasGoal = goal.ID, true
		}
	}
	b.w.RaceModeItems = b.itemList("race_mode_items", wf.RaceItems)
	b.w.JunkItems = b.itemList("junk_items", wf.JunkItems)
}

func (b *builder) itemList(field string, names []string) []world.ItemID {
	var out []world.ItemID
	for _, name := range names {
		id, ok := b.w.ItemByName(name)
		if !ok {
			b.fail(WorldFile, field, fmt.Errorf("item %q: %w", name, world.ErrUnknownName))
			continue
		}
		out = append(out, id)
	}
	return out
}

// itemPool builds the per-world pool from item counts. Dungeon items are
// left out; placement takes them from the dungeon tables.
func (b *builder) itemPool() {
	for _, it := range b.rs.items {
		if it.Key != "" {
			continue
		}
		n := 1
		if it.Count != nil {
			n = *it.Count
		}
		item := b.w.Item(it.Name)
		for i := 0; i < n; i++ {
			b.w.ItemPool = append(b.w.ItemPool, item)
		}
	}
}
