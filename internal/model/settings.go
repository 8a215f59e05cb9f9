package model

// Settings is a flat mapping of option name to value. The persisted form is
// a diff against DefaultSettings: only overridden keys are stored, and
// readers merge the diff back over the defaults.
type Settings map[string]interface{}

// DefaultSettings returns the canonical default settings. Values use the
// types encoding/json produces (float64 for numbers) so imported values
// compare cleanly against them.
func DefaultSettings() Settings {
	return Settings{
		"itemSize":                float64(50),
		"charCol":                 float64(3),
		"showNewItems":            false,
		"singleCharacter":         false,
		"language":                "en",
		"descriptionsToDisplay":   "both",
		"hideCompletedRecords":    false,
		"farmingMakeRoomForItems": true,
		"itemSortOrderCustom":     []interface{}{"primStat", "name"},
		"loadoutSort":             float64(0),
	}
}

// Merge returns the defaults overlaid with the stored diff. The receiver is
// not modified.
func (s Settings) Merge(defaults Settings) Settings {
	merged := make(Settings, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range s {
		merged[k] = v
	}
	return merged
}
