package model

import "time"

// TokenData contains the caller identity stored with a session token.
type TokenData struct {
	AppID              string    `json:"app_id"`
	AppName            string    `json:"app_name"`
	BungieMembershipID int64     `json:"bungie_membership_id"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at"`
}
