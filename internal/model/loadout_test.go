package model

import "testing"

func TestLoadoutClassRoundTrip(t *testing.T) {
	classes := []LoadoutClass{
		LoadoutClassAny,
		LoadoutClassWarlock,
		LoadoutClassTitan,
		LoadoutClassHunter,
	}

	for _, c := range classes {
		if got := LoadoutClassFromDestiny(c.DestinyClass()); got != c {
			t.Errorf("class %d: round trip gave %d", c, got)
		}
	}
}

func TestLoadoutClassTotality(t *testing.T) {
	// Unmapped legacy codes land on Unknown
	if got := LoadoutClass(42).DestinyClass(); got != DestinyClassUnknown {
		t.Errorf("expected Unknown for unmapped legacy code, got %d", got)
	}

	// Unmapped Bungie codes land on Any
	if got := LoadoutClassFromDestiny(99); got != LoadoutClassAny {
		t.Errorf("expected Any for unmapped class code, got %d", got)
	}
	if got := LoadoutClassFromDestiny(DestinyClassUnknown); got != LoadoutClassAny {
		t.Errorf("expected Any for Unknown, got %d", got)
	}
}

func TestSettingsMerge(t *testing.T) {
	defaults := Settings{"a": "x", "b": float64(1)}
	diff := Settings{"b": float64(2)}

	merged := diff.Merge(defaults)
	if merged["a"] != "x" {
		t.Errorf("expected default 'x' for a, got %v", merged["a"])
	}
	if merged["b"] != float64(2) {
		t.Errorf("expected override 2 for b, got %v", merged["b"])
	}

	// Receiver and defaults untouched
	if len(diff) != 1 {
		t.Errorf("diff modified: %v", diff)
	}
	if defaults["b"] != float64(1) {
		t.Errorf("defaults modified: %v", defaults)
	}
}
