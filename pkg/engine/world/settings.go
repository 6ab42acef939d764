package world

import (
	"github.com/zyedidia/generic/mapset"
)

// Settings is the immutable set of enabled flags for one world plus the
// numeric options that placement reads.
type Settings struct {
	enabled mapset.Set[SettingID]

	// RaceModeDungeons is how many dungeons get a guaranteed boss reward
	// when the race mode flag is on.
	RaceModeDungeons int
}

// NewSettings creates settings with the given flags enabled
func NewSettings(flags ...SettingID) Settings {
	s := Settings{enabled: mapset.New[SettingID]()}
	for _, f := range flags {
		s.enabled.Put(f)
	}
	return s
}

// Enabled reports whether the flag is on
func (s Settings) Enabled(id SettingID) bool {
	return s.enabled.Has(id)
}

// Len returns the number of enabled flags
func (s Settings) Len() int {
	return s.enabled.Size()
}
