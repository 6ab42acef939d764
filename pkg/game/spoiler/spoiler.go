// Package spoiler renders a generated seed as a human readable log or a
// machine readable placement summary.
package spoiler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"wwrando/pkg/engine/world"
	"wwrando/pkg/game/generator"
	"wwrando/pkg/game/locale"
	"wwrando/pkg/game/setup"
)

// Entry is one filled location
type Entry struct {
	World    int    `json:"world" yaml:"world"`
	Location string `json:"location" yaml:"location"`
	Item     string `json:"item" yaml:"item"`
	Owner    int    `json:"owner" yaml:"owner"`
}

// Log is everything a spoiler shows about one seed
type Log struct {
	Seed      string   `json:"seed" yaml:"seed"`
	Hash      string   `json:"hash" yaml:"hash"`
	Algorithm string   `json:"algorithm" yaml:"algorithm"`
	Worlds    int      `json:"worlds" yaml:"worlds"`
	Settings  []string `json:"settings" yaml:"settings"`

	StartingItems map[int][]string `json:"starting_items" yaml:"starting_items"`
	Playthrough   [][]Entry        `json:"playthrough" yaml:"playthrough"`
	Locations     []Entry          `json:"locations" yaml:"locations"`
	Warnings      []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Build collects the spoiler of a generated seed
func Build(res *generator.Result, cfg setup.Config) *Log {
	log := &Log{
		Seed:          res.Seed,
		Hash:          res.Hash,
		Algorithm:     res.Algorithm,
		Worlds:        len(res.Worlds),
		Settings:      append([]string(nil), cfg.Settings...),
		StartingItems: make(map[int][]string),
	}

	for _, w := range res.Worlds {
		names := make([]string, 0, len(w.StartingItems))
		for _, it := range w.StartingItems {
			names = append(names, ItemName(res.Worlds, it))
		}
		log.StartingItems[w.ID] = names
	}

	for _, sphere := range res.Playthrough {
		entries := make([]Entry, 0, len(sphere))
		for _, loc := range sphere {
			entries = append(entries, entry(res.Worlds, loc))
		}
		log.Playthrough = append(log.Playthrough, entries)
	}

	for _, loc := range world.AllLocations(res.Worlds) {
		if loc.Empty() {
			continue
		}
		log.Locations = append(log.Locations, entry(res.Worlds, loc))
	}

	for _, warn := range res.Warnings {
		log.Warnings = append(log.Warnings, locale.Get("WARN_RACE_DEMOTED", warn.Location))
	}

	return log
}

func entry(worlds []*world.World, loc *world.Location) Entry {
	return Entry{
		World:    loc.World,
		Location: loc.Name,
		Item:     ItemName(worlds, loc.CurrentItem),
		Owner:    loc.CurrentItem.World,
	}
}

// ItemName resolves an item against the world that owns it
func ItemName(worlds []*world.World, it world.Item) string {
	if it.World < 0 || it.World >= len(worlds) {
		return it.String()
	}
	return worlds[it.World].ItemName(it.ID)
}

// Write renders the log as text
func Write(w io.Writer, log *Log) error {
	p := &printer{w: w, multi: log.Worlds > 1}

	p.line("%s", locale.Get("SPOILER_TITLE"))
	p.line("%s: %s", locale.Get("SPOILER_SEED"), log.Seed)
	p.line("%s: %s", locale.Get("SPOILER_HASH"), log.Hash)
	p.line("")

	p.heading("SPOILER_SETTINGS")
	p.list(log.Settings)

	p.heading("SPOILER_STARTING_ITEMS")
	for id := 0; id < log.Worlds; id++ {
		if p.multi {
			p.line("%s:", locale.Get("SPOILER_WORLD", id+1))
		}
		p.list(log.StartingItems[id])
	}

	p.heading("SPOILER_PLAYTHROUGH")
	for i, sphere := range log.Playthrough {
		p.line("%s:", locale.Get("SPOILER_SPHERE", i+1))
		for _, e := range sphere {
			p.entry(e)
		}
	}
	if len(log.Playthrough) == 0 {
		p.line("  %s", locale.Get("SPOILER_NONE"))
	}
	p.line("")

	p.heading("SPOILER_LOCATIONS")
	for _, e := range log.Locations {
		p.entry(e)
	}
	p.line("")

	if len(log.Warnings) > 0 {
		p.heading("SPOILER_WARNINGS")
		p.list(log.Warnings)
	}

	return p.err
}

// WriteJSON renders the log as indented JSON
func WriteJSON(w io.Writer, log *Log) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(log)
}

// WriteYAML renders the log as YAML
func WriteYAML(w io.Writer, log *Log) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(log); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes the log to path. The format follows the extension
// (.json, .yaml or .yml, anything else is text); a trailing .zst compresses
// the output with zstd.
func WriteFile(path string, log *Log) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	name := path
	var out io.Writer = f
	if strings.EqualFold(filepath.Ext(name), ".zst") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
		enc, zerr := zstd.NewWriter(f)
		if zerr != nil {
			return zerr
		}
		defer func() {
			if cerr := enc.Close(); err == nil {
				err = cerr
			}
		}()
		out = enc
	}

	return Encode(out, formatOf(name), log)
}

// Format is an output encoding of the log
type Format string

// Formats
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Encode writes the log in the given format
func Encode(w io.Writer, format Format, log *Log) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, log)
	case FormatYAML:
		return WriteYAML(w, log)
	case FormatText:
		return Write(w, log)
	default:
		return fmt.Errorf("unknown spoiler format %q", format)
	}
}

type printer struct {
	w     io.Writer
	multi bool
	err   error
}

func (p *printer) line(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", a...)
}

func (p *printer) heading(key string) {
	title := locale.Get(key)
	p.line("%s", title)
	p.line("%s", strings.Repeat("-", len([]rune(title))))
}

func (p *printer) list(items []string) {
	if len(items) == 0 {
		p.line("  %s", locale.Get("SPOILER_NONE"))
	}
	for _, it := range items {
		p.line("  %s", it)
	}
	p.line("")
}

func (p *printer) entry(e Entry) {
	if !p.multi {
		p.line("  %s: %s", e.Location, e.Item)
		return
	}
	p.line("  [W%d] %s: %s [W%d]", e.World+1, e.Location, e.Item, e.Owner+1)
}
