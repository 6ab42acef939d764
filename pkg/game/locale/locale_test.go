package locale

import (
	"testing"
)

func TestLanguages(t *testing.T) {
	got := Languages()
	if len(got) != 2 || got[0] != "en" || got[1] != "es" {
		t.Errorf("Languages() = %v, want [en es]", got)
	}
}

func TestGet(t *testing.T) {
	t.Cleanup(func() { _ = SetLanguage(DefaultLanguage) })

	if got := Get("SPOILER_SEED"); got != "Seed" {
		t.Errorf("Get(SPOILER_SEED) = %q, want %q", got, "Seed")
	}
	if got := Get("SPOILER_SPHERE", 3); got != "Sphere 3" {
		t.Errorf("Get(SPOILER_SPHERE, 3) = %q, want %q", got, "Sphere 3")
	}

	if err := SetLanguage("es_ES.UTF-8"); err != nil {
		t.Fatalf("SetLanguage(es_ES.UTF-8) = %v", err)
	}
	if got := Get("SPOILER_SEED"); got != "Semilla" {
		t.Errorf("Get(SPOILER_SEED) = %q, want %q", got, "Semilla")
	}
}

func TestSetLanguageUnknown(t *testing.T) {
	if err := SetLanguage("tlh"); err == nil {
		t.Error("SetLanguage(tlh) = nil, want error")
	}
	if got := Get("SPOILER_SEED"); got == "" {
		t.Error("catalogue was replaced by a failed SetLanguage")
	}
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	en, err := Load("en")
	if err != nil {
		t.Fatal(err)
	}
	for _, lang := range Languages() {
		po, err := Load(lang)
		if err != nil {
			t.Fatalf("Load(%s) = %v", lang, err)
		}
		for _, key := range keys {
			if po.Get(key) == key {
				t.Errorf("%s: %s is not translated", lang, key)
			}
			if en.Get(key) == key {
				t.Errorf("en: %s is not translated", key)
			}
		}
	}
}

var keys = []string{
	"SPOILER_TITLE", "SPOILER_SEED", "SPOILER_HASH", "SPOILER_SETTINGS", "SPOILER_STARTING_ITEMS",
	"SPOILER_PLAYTHROUGH", "SPOILER_SPHERE", "SPOILER_LOCATIONS", "SPOILER_WARNINGS", "SPOILER_WORLD",
	"SPOILER_NONE", "GEN_DONE", "GEN_FAILED", "GEN_SPOILER_WRITTEN", "CHECK_OK", "CHECK_UNREACHABLE",
	"MASS_SUMMARY", "MASS_FAILURE", "WARN_RACE_DEMOTED",
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"":           "en",
		"C":          "en",
		"en_GB.utf8": "en",
		" ES ":       "es",
		"es-MX":      "es",
		"de@euro":    "de",
	}
	for in, want := range tests {
		if got := baseLanguage(in); got != want {
			t.Errorf("baseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
