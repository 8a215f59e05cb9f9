package model

import (
	"encoding/json"
	"time"
)

// Recognized top-level keys in an import bag. Loadouts use an indirection:
// the list key holds an ordered array of loadout IDs, and each ID is itself
// a top-level bag key mapping to the full loadout payload.
const (
	SettingsKey    = "settings-v1.0"
	LoadoutListKey = "loadouts-v3.0"
)

// ImportBag is the raw exported payload before normalization: an open-ended
// JSON object probed at known key names. Values stay undecoded until the
// extractors need them.
type ImportBag map[string]json.RawMessage

// ProfileExport is the read-side counterpart of an import: everything the
// service stores for one caller, with settings merged back over defaults.
type ProfileExport struct {
	Settings        Settings         `json:"settings"`
	Loadouts        []Loadout        `json:"loadouts"`
	ItemAnnotations []ItemAnnotation `json:"itemAnnotations"`
	ExportedAt      time.Time        `json:"exportedAt"`
}
