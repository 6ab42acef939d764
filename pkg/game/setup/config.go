package setup

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxWorlds caps multiworld generation
const MaxWorlds = 16

// Config is the per-run settings surface: flags, starting items, race mode,
// retry counts and pre-placed items.
type Config struct {
	Seed             string      `yaml:"seed"`
	Worlds           int         `yaml:"worlds"`
	Settings         []string    `yaml:"settings"`
	RaceModeDungeons int         `yaml:"race_mode_dungeons"`
	StartingItems    []string    `yaml:"starting_items,omitempty"`
	Plandomizer      []Placement `yaml:"plandomizer,omitempty"`

	FillRetries  int `yaml:"fill_retries"`
	BuildRetries int `yaml:"build_retries"`
}

// Placement pre-places Item (owned by Owner) at Location in World
type Placement struct {
	Location string `yaml:"location"`
	Item     string `yaml:"item"`
	World    int    `yaml:"world"`
	Owner    *int   `yaml:"owner,omitempty"`
}

// OwnerWorld returns the world that receives the item
func (p Placement) OwnerWorld() int {
	if p.Owner == nil {
		return p.World
	}
	return *p.Owner
}

// Load reads a YAML config file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Defaults matches the builtin rule set
func Defaults() Config {
	return Config{
		Worlds: 1,
		Settings: []string{
			"progression_dungeons",
			"progression_great_fairies",
			"progression_misc",
			"race_mode",
		},
		RaceModeDungeons: 2,
		FillRetries:      10,
		BuildRetries:     20,
	}
}

// Normalize trims names and drops duplicate flags. The slices are copied,
// so configs that share backing arrays may be normalized concurrently.
func (c *Config) Normalize() {
	if c == nil {
		return
	}
	if c.Worlds <= 0 {
		c.Worlds = 1
	}
	seen := make(map[string]bool, len(c.Settings))
	var flags []string
	for _, s := range c.Settings {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		flags = append(flags, s)
	}
	sort.Strings(flags)
	c.Settings = flags

	if c.StartingItems != nil {
		items := make([]string, len(c.StartingItems))
		for i, s := range c.StartingItems {
			items[i] = strings.TrimSpace(s)
		}
		c.StartingItems = items
	}
	if c.Plandomizer != nil {
		placements := make([]Placement, len(c.Plandomizer))
		for i, p := range c.Plandomizer {
			p.Location = strings.TrimSpace(p.Location)
			p.Item = strings.TrimSpace(p.Item)
			placements[i] = p
		}
		c.Plandomizer = placements
	}
}

// Validate checks value ranges; names are checked against the rule set during setup
func (c Config) Validate() error {
	if c.Worlds < 1 || c.Worlds > MaxWorlds {
		return fmt.Errorf("worlds must be between 1 and %d, got %d", MaxWorlds, c.Worlds)
	}
	if c.RaceModeDungeons < 0 {
		return errors.New("race_mode_dungeons must not be negative")
	}
	if c.FillRetries < 1 {
		return errors.New("fill_retries must be at least 1")
	}
	if c.BuildRetries < 1 {
		return errors.New("build_retries must be at least 1")
	}
	for _, s := range c.StartingItems {
		if s == "" {
			return errors.New("starting_items: empty item name")
		}
	}
	placed := make(map[[2]string]bool)
	for _, p := range c.Plandomizer {
		if p.Location == "" || p.Item == "" {
			return errors.New("plandomizer: location and item are required")
		}
		if p.World < 0 || p.World >= c.Worlds {
			return fmt.Errorf("plandomizer: %s: world %d out of range", p.Location, p.World)
		}
		if o := p.OwnerWorld(); o < 0 || o >= c.Worlds {
			return fmt.Errorf("plandomizer: %s: owner %d out of range", p.Location, o)
		}
		k := [2]string{fmt.Sprint(p.World), p.Location}
		if placed[k] {
			return fmt.Errorf("plandomizer: %s placed twice", p.Location)
		}
		placed[k] = true
	}
	return nil
}
