package model

// LoadoutClass is the legacy class code carried by exported loadouts.
type LoadoutClass int

const (
	LoadoutClassAny     LoadoutClass = -1
	LoadoutClassWarlock LoadoutClass = 0
	LoadoutClassTitan   LoadoutClass = 1
	LoadoutClassHunter  LoadoutClass = 2
)

// DestinyClass codes as Bungie defines them.
const (
	DestinyClassTitan   = 0
	DestinyClassHunter  = 1
	DestinyClassWarlock = 2
	DestinyClassUnknown = 3
)

// DestinyClass maps the legacy class code to the Bungie class code.
// Total: anything unmapped falls through to Unknown.
func (c LoadoutClass) DestinyClass() int {
	switch c {
	case LoadoutClassWarlock:
		return DestinyClassWarlock
	case LoadoutClassTitan:
		return DestinyClassTitan
	case LoadoutClassHunter:
		return DestinyClassHunter
	default:
		return DestinyClassUnknown
	}
}

// LoadoutClassFromDestiny maps a Bungie class code back to the legacy code.
// Total: anything unmapped falls through to LoadoutClassAny.
func LoadoutClassFromDestiny(code int) LoadoutClass {
	switch code {
	case DestinyClassWarlock:
		return LoadoutClassWarlock
	case DestinyClassTitan:
		return LoadoutClassTitan
	case DestinyClassHunter:
		return LoadoutClassHunter
	default:
		return LoadoutClassAny
	}
}

// LoadoutItem is a reference to an inventory item within a loadout.
type LoadoutItem struct {
	ID     string `json:"id"`
	Hash   int64  `json:"hash"`
	Amount int    `json:"amount,omitempty"`
}

// Loadout is a normalized loadout record. PlatformMembershipID and
// DestinyVersion are promoted out of the raw payload so every record
// carries its storage partition key.
type Loadout struct {
	ID                   string        `json:"id"`
	Name                 string        `json:"name"`
	ClassType            int           `json:"classType"`
	ClearSpace           bool          `json:"clearSpace"`
	Equipped             []LoadoutItem `json:"equipped"`
	Unequipped           []LoadoutItem `json:"unequipped"`
	PlatformMembershipID int64         `json:"platformMembershipId"`
	DestinyVersion       int           `json:"destinyVersion"`
}
