// Package data loads rule sets (items, locations, macros, dungeons and
// settings) from YAML files and resolves them into a world registry.
package data

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Rule set file names
const (
	WorldFile     = "world.yaml"
	ItemsFile     = "items.yaml"
	MacrosFile    = "macros.yaml"
	LocationsFile = "locations.yaml"
	DungeonsFile  = "dungeons.yaml"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

//go:embed schemas/*.json
var schemaFS embed.FS

// Builtin is the demo rule set shipped with the binary
var Builtin fs.FS = mustSub(builtinFS, "builtin")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

var schemaFiles = map[string]string{
	WorldFile:     "schemas/world.json",
	ItemsFile:     "schemas/items.json",
	MacrosFile:    "schemas/macros.json",
	LocationsFile: "schemas/locations.json",
	DungeonsFile:  "schemas/dungeons.json",
}

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// schemaFor returns the compiled schema for a rule set file
func schemaFor(file string) (*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = make(map[string]*jsonschema.Schema, len(schemaFiles))
		for name, path := range schemaFiles {
			raw, err := schemaFS.ReadFile(path)
			if err != nil {
				schemasErr = err
				return
			}
			sch, err := jsonschema.CompileString(path, string(raw))
			if err != nil {
				schemasErr = fmt.Errorf("compile %s: %w", path, err)
				return
			}
			schemas[name] = sch
		}
	})
	if schemasErr != nil {
		return nil, schemasErr
	}
	return schemas[file], nil
}
