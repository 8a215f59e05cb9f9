package service

import (
	"encoding/json"
	"reflect"
	"testing"

	"guardian-vault-api/internal/model"
)

func bagFromJSON(t *testing.T, raw string) model.ImportBag {
	t.Helper()
	var bag model.ImportBag
	if err := json.Unmarshal([]byte(raw), &bag); err != nil {
		t.Fatalf("parse bag: %v", err)
	}
	return bag
}

func TestExtractSettings(t *testing.T) {
	defaults := model.Settings{
		"itemSize":     float64(50),
		"language":     "en",
		"showNewItems": false,
	}

	tests := []struct {
		name string
		bag  string
		want model.Settings
	}{
		{
			name: "no settings key yields empty diff",
			bag:  `{}`,
			want: model.Settings{},
		},
		{
			name: "values equal to defaults are dropped",
			bag:  `{"settings-v1.0": {"itemSize": 50, "language": "en", "showNewItems": false}}`,
			want: model.Settings{},
		},
		{
			name: "only overrides are retained",
			bag:  `{"settings-v1.0": {"itemSize": 60, "language": "en"}}`,
			want: model.Settings{"itemSize": float64(60)},
		},
		{
			name: "unknown keys are dropped",
			bag:  `{"settings-v1.0": {"notASetting": true, "language": "de"}}`,
			want: model.Settings{"language": "de"},
		},
		{
			name: "malformed settings value yields empty diff",
			bag:  `{"settings-v1.0": [1, 2, 3]}`,
			want: model.Settings{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSettings(bagFromJSON(t, tt.bag), defaults)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			for key := range got {
				if _, ok := defaults[key]; !ok {
					t.Errorf("diff contains key %q absent from defaults", key)
				}
			}
		})
	}
}

func TestExtractLoadouts(t *testing.T) {
	bag := bagFromJSON(t, `{
		"loadouts-v3.0": ["lo-1", "lo-missing", "lo-2"],
		"lo-1": {
			"id": "lo-1", "name": "Raid", "classType": 0, "clearSpace": true,
			"membershipId": "4611686018429783292", "destinyVersion": 2,
			"items": [
				{"id": "111", "hash": 10, "amount": 1, "equipped": true},
				{"id": "222", "hash": 20, "amount": 2}
			]
		},
		"lo-2": {"name": "PvP", "membershipId": 12345, "items": []}
	}`)

	got := ExtractLoadouts(bag)
	if len(got) != 2 {
		t.Fatalf("expected 2 loadouts, got %d", len(got))
	}

	raid := got[0]
	if raid.ID != "lo-1" || raid.Name != "Raid" {
		t.Errorf("unexpected first loadout: %+v", raid)
	}
	if raid.ClassType != model.DestinyClassWarlock {
		t.Errorf("legacy class 0 should map to Warlock (%d), got %d", model.DestinyClassWarlock, raid.ClassType)
	}
	if !raid.ClearSpace {
		t.Error("expected clearSpace true")
	}
	if raid.PlatformMembershipID != 4611686018429783292 {
		t.Errorf("expected membership 4611686018429783292, got %d", raid.PlatformMembershipID)
	}
	if len(raid.Equipped) != 1 || raid.Equipped[0].ID != "111" {
		t.Errorf("unexpected equipped items: %+v", raid.Equipped)
	}
	if len(raid.Unequipped) != 1 || raid.Unequipped[0].ID != "222" || raid.Unequipped[0].Amount != 2 {
		t.Errorf("unexpected unequipped items: %+v", raid.Unequipped)
	}

	pvp := got[1]
	if pvp.ID != "lo-2" {
		t.Errorf("expected ID fallback to bag key, got %q", pvp.ID)
	}
	if pvp.ClassType != model.DestinyClassUnknown {
		t.Errorf("absent class should map to Unknown (%d), got %d", model.DestinyClassUnknown, pvp.ClassType)
	}
	if pvp.DestinyVersion != 2 {
		t.Errorf("expected default destiny version 2, got %d", pvp.DestinyVersion)
	}
	if pvp.ClearSpace {
		t.Error("expected clearSpace to default false")
	}
	if pvp.PlatformMembershipID != 12345 {
		t.Errorf("expected numeric membershipId to parse, got %d", pvp.PlatformMembershipID)
	}
}

func TestExtractLoadoutsAbsentList(t *testing.T) {
	got := ExtractLoadouts(bagFromJSON(t, `{"settings-v1.0": {}}`))
	if len(got) != 0 {
		t.Errorf("expected no loadouts, got %d", len(got))
	}
}

func TestExtractLoadoutsDanglingIDs(t *testing.T) {
	bag := bagFromJSON(t, `{
		"loadouts-v3.0": ["a", "b", "c", "d"],
		"a": {"id": "a", "name": "Keep", "membershipId": 1},
		"b": null,
		"c": false
	}`)

	got := ExtractLoadouts(bag)
	if len(got) != 1 {
		t.Fatalf("expected only the resolvable loadout, got %d", len(got))
	}
	if got[0].ID != "a" {
		t.Errorf("expected loadout 'a', got %q", got[0].ID)
	}
}

func TestExtractLoadoutsIdempotent(t *testing.T) {
	bag := bagFromJSON(t, `{
		"loadouts-v3.0": ["x", "y"],
		"x": {"id": "x", "name": "One", "membershipId": 1, "items": [{"id": "1", "hash": 2, "equipped": true}]},
		"y": {"id": "y", "name": "Two", "membershipId": 1}
	}`)

	first := ExtractLoadouts(bag)
	second := ExtractLoadouts(bag)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtractItemAnnotations(t *testing.T) {
	bag := bagFromJSON(t, `{
		"dimItemInfo-m4611686018429783292-d2": {"123": {"tag": "favorite", "notes": "x"}}
	}`)

	got := ExtractItemAnnotations(bag)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 annotation, got %d", len(got))
	}

	a := got[0]
	if a.PlatformMembershipID != 4611686018429783292 {
		t.Errorf("expected membership 4611686018429783292, got %d", a.PlatformMembershipID)
	}
	if a.DestinyVersion != 2 {
		t.Errorf("expected destiny version 2, got %d", a.DestinyVersion)
	}
	if a.ID != "123" || a.Tag != "favorite" || a.Notes != "x" {
		t.Errorf("unexpected annotation: %+v", a)
	}
}

func TestExtractItemAnnotationsIgnoresNonMatching(t *testing.T) {
	bag := bagFromJSON(t, `{
		"settings-v1.0": {},
		"dimItemInfo-m1-d3": {"1": {"tag": "junk"}},
		"dimItemInfo-mabc-d2": {"1": {"tag": "junk"}},
		"dimItemInfo-m1-d2-extra": {"1": {"tag": "junk"}},
		"somethingElse": {"1": {"tag": "junk"}}
	}`)

	if got := ExtractItemAnnotations(bag); len(got) != 0 {
		t.Errorf("expected no annotations, got %+v", got)
	}
}

func TestExtractItemAnnotationsPreservesGroupOrder(t *testing.T) {
	bag := bagFromJSON(t, `{
		"dimItemInfo-m7-d1": {"a": {"tag": "keep"}, "b": {"notes": "n"}, "c": {"tag": "junk", "notes": "z"}}
	}`)

	got := ExtractItemAnnotations(bag)
	if len(got) != 3 {
		t.Fatalf("expected 3 annotations, got %d", len(got))
	}
	for i, wantID := range []string{"a", "b", "c"} {
		if got[i].ID != wantID {
			t.Errorf("position %d: expected %q, got %q", i, wantID, got[i].ID)
		}
		if got[i].DestinyVersion != 1 || got[i].PlatformMembershipID != 7 {
			t.Errorf("position %d: wrong partition fields: %+v", i, got[i])
		}
	}
}
