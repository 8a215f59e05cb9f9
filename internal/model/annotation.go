package model

// ItemAnnotation is a user's tag and notes for a single inventory item,
// partitioned by the game account it belongs to.
type ItemAnnotation struct {
	ID                   string `json:"id"`
	Tag                  string `json:"tag,omitempty"`
	Notes                string `json:"notes,omitempty"`
	PlatformMembershipID int64  `json:"platformMembershipId"`
	DestinyVersion       int    `json:"destinyVersion"`
}
