// Package locale holds the message catalogues for user-facing text.
// Messages are looked up by key, e.g. Get("SPOILER_SEED").
package locale

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/leonelquinteros/gotext"
)

// DefaultLanguage is used when no language is configured
const DefaultLanguage = "en"

//go:embed po/*.po
var catalogs embed.FS

var current atomic.Pointer[gotext.Po]

func init() {
	po, err := Load(DefaultLanguage)
	if err != nil {
		panic(err)
	}
	current.Store(po)
}

// Languages lists the embedded catalogues
func Languages() []string {
	entries, _ := catalogs.ReadDir("po")
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".po"))
	}
	sort.Strings(langs)
	return langs
}

// Load parses the catalogue for lang. Region suffixes ("es_ES.UTF-8") are ignored.
func Load(lang string) (*gotext.Po, error) {
	lang = baseLanguage(lang)
	raw, err := catalogs.ReadFile(path.Join("po", lang+".po"))
	if err != nil {
		return nil, fmt.Errorf("language %q: not available (have %s)", lang, strings.Join(Languages(), ", "))
	}
	po := gotext.NewPo()
	po.Parse(raw)
	return po, nil
}

// SetLanguage switches the catalogue used by Get
func SetLanguage(lang string) error {
	po, err := Load(lang)
	if err != nil {
		return err
	}
	current.Store(po)
	return nil
}

// Get translates key, formatting it with vars when given
func Get(key string, vars ...any) string {
	return current.Load().Get(key, vars...)
}

func baseLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "_.-@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "c" || lang == "posix" {
		return DefaultLanguage
	}
	return lang
}
