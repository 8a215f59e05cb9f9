package model

import "time"

// ImportLog is an audit record for one import attempt. It persists outside
// the import transaction so failed imports are visible too.
type ImportLog struct {
	ID                 int64     `json:"id"`
	AppID              string    `json:"app_id"`
	BungieMembershipID int64     `json:"bungie_membership_id"`
	SettingsCount      int       `json:"settings_count"`
	LoadoutCount       int       `json:"loadout_count"`
	AnnotationCount    int       `json:"annotation_count"`
	Status             string    `json:"status"` // 'success' or 'failed'
	ErrorMessage       string    `json:"error_message,omitempty"`
	ExecutionTimeMs    int64     `json:"execution_time_ms"`
	CreatedAt          time.Time `json:"created_at"`
}

// ImportSummary reports how many records an import wrote.
type ImportSummary struct {
	Settings        int `json:"settings"`
	Loadouts        int `json:"loadouts"`
	ItemAnnotations int `json:"item_annotations"`
}
