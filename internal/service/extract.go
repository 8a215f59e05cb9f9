package service

import (
	"bytes"
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"guardian-vault-api/internal/model"
)

// itemInfoKeyRe matches per-account annotation groups in an import bag,
// e.g. "dimItemInfo-m4611686018429783292-d2". Capture groups: platform
// membership ID and destiny version (1 or 2).
var itemInfoKeyRe = regexp.MustCompile(`^dimItemInfo-m(\d+)-d([12])$`)

// ExtractSettings produces the diff-against-defaults for an import bag.
// A key is retained only when it exists in the defaults, is present in the
// import, and its value differs from the default. A bag with no settings
// key yields an empty diff; unknown keys are dropped.
func ExtractSettings(bag model.ImportBag, defaults model.Settings) model.Settings {
	diff := model.Settings{}

	raw, ok := bag[model.SettingsKey]
	if !ok {
		return diff
	}

	var imported map[string]interface{}
	if err := json.Unmarshal(raw, &imported); err != nil {
		return diff
	}

	for key, def := range defaults {
		val, ok := imported[key]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(val, def) {
			diff[key] = val
		}
	}
	return diff
}

// rawLoadout is the exported loadout payload shape. membershipId arrives as
// a string in newer exports and a number in older ones.
type rawLoadout struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	ClassType      *int             `json:"classType"`
	ClearSpace     *bool            `json:"clearSpace"`
	MembershipID   flexInt64        `json:"membershipId"`
	DestinyVersion int              `json:"destinyVersion"`
	Items          []rawLoadoutItem `json:"items"`
}

type rawLoadoutItem struct {
	ID       string `json:"id"`
	Hash     int64  `json:"hash"`
	Amount   int    `json:"amount"`
	Equipped bool   `json:"equipped"`
}

// flexInt64 decodes a JSON number or a numeric string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt64(n)
	return nil
}

// ExtractLoadouts normalizes the bag's loadouts. The list key holds an
// ordered array of loadout IDs; each ID is looked up as a sibling bag key.
// Dangling or falsy entries are skipped without error, and output order
// follows the ID list.
func ExtractLoadouts(bag model.ImportBag) []model.Loadout {
	loadouts := []model.Loadout{}

	rawIDs, ok := bag[model.LoadoutListKey]
	if !ok {
		return loadouts
	}
	var ids []string
	if err := json.Unmarshal(rawIDs, &ids); err != nil {
		return loadouts
	}

	for _, id := range ids {
		raw, ok := bag[id]
		if !ok || isJSONFalsy(raw) {
			continue
		}
		var rl rawLoadout
		if err := json.Unmarshal(raw, &rl); err != nil {
			continue
		}
		if rl.ID == "" {
			rl.ID = id
		}
		loadouts = append(loadouts, normalizeLoadout(rl))
	}
	return loadouts
}

// normalizeLoadout promotes the partition fields, remaps the class code,
// and partitions the flat item list on the equipped flag.
func normalizeLoadout(rl rawLoadout) model.Loadout {
	classType := model.LoadoutClassAny
	if rl.ClassType != nil {
		classType = model.LoadoutClass(*rl.ClassType)
	}

	destinyVersion := rl.DestinyVersion
	if destinyVersion == 0 {
		destinyVersion = 2
	}

	equipped := []model.LoadoutItem{}
	unequipped := []model.LoadoutItem{}
	for _, item := range rl.Items {
		ref := model.LoadoutItem{ID: item.ID, Hash: item.Hash, Amount: item.Amount}
		if item.Equipped {
			equipped = append(equipped, ref)
		} else {
			unequipped = append(unequipped, ref)
		}
	}

	return model.Loadout{
		ID:                   rl.ID,
		Name:                 rl.Name,
		ClassType:            classType.DestinyClass(),
		ClearSpace:           rl.ClearSpace != nil && *rl.ClearSpace,
		Equipped:             equipped,
		Unequipped:           unequipped,
		PlatformMembershipID: int64(rl.MembershipID),
		DestinyVersion:       destinyVersion,
	}
}

// isJSONFalsy reports whether a raw bag value is a JSON falsy scalar.
func isJSONFalsy(raw json.RawMessage) bool {
	switch strings.TrimSpace(string(raw)) {
	case "", "null", "false", "0", `""`:
		return true
	}
	return false
}

// ExtractItemAnnotations scans the bag for per-account annotation groups
// and emits one normalized annotation per entry, carrying the membership ID
// and destiny version parsed from the group key. Non-matching keys are
// ignored; there is no ordering guarantee across groups.
func ExtractItemAnnotations(bag model.ImportBag) []model.ItemAnnotation {
	annotations := []model.ItemAnnotation{}

	for key, raw := range bag {
		m := itemInfoKeyRe.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		membershipID, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// Matching shape but out of int64 range; skip the group.
			continue
		}
		destinyVersion, _ := strconv.Atoi(m[2])

		annotations = append(annotations, decodeAnnotationGroup(raw, membershipID, destinyVersion)...)
	}
	return annotations
}

// decodeAnnotationGroup walks the item-ID object with a token decoder so
// entries come out in document order.
func decodeAnnotationGroup(raw json.RawMessage, membershipID int64, destinyVersion int) []model.ItemAnnotation {
	out := []model.ItemAnnotation{}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return out
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return out
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		itemID, _ := keyTok.(string)

		var info struct {
			Tag   string `json:"tag"`
			Notes string `json:"notes"`
		}
		if err := dec.Decode(&info); err != nil {
			return out
		}

		out = append(out, model.ItemAnnotation{
			ID:                   itemID,
			Tag:                  info.Tag,
			Notes:                info.Notes,
			PlatformMembershipID: membershipID,
			DestinyVersion:       destinyVersion,
		})
	}
	return out
}
