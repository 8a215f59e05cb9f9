package repository

import (
	"context"

	"guardian-vault-api/internal/model"
)

// ProfileTx is a single transactional session over the profile store.
// All writes go through it; Commit makes them durable, Rollback discards
// them. Rollback after Commit is a no-op, so callers can defer it.
type ProfileTx interface {
	// ReplaceSettings overwrites the caller's stored settings diff.
	// Full replace, not a merge: keys absent from the diff fall back to
	// defaults on read.
	ReplaceSettings(ctx context.Context, appID string, membershipID int64, settings model.Settings) error

	// UpdateLoadout upserts one loadout keyed by
	// (appID, membershipID, platformMembershipID, destinyVersion, loadout.ID).
	UpdateLoadout(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, loadout model.Loadout) error

	// UpdateItemAnnotation upserts one annotation keyed by
	// (appID, membershipID, platformMembershipID, destinyVersion, annotation.ID).
	UpdateItemAnnotation(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, annotation model.ItemAnnotation) error

	Commit() error
	Rollback() error
}

// ProfileRepository defines profile data access methods.
type ProfileRepository interface {
	// Begin opens a transactional session for import writes.
	Begin(ctx context.Context) (ProfileTx, error)

	// GetSettings returns the caller's stored settings diff (empty when
	// nothing has been stored).
	GetSettings(ctx context.Context, appID string, membershipID int64) (model.Settings, error)

	// GetLoadouts returns all stored loadouts for the caller.
	GetLoadouts(ctx context.Context, appID string, membershipID int64) ([]model.Loadout, error)

	// GetItemAnnotations returns all stored item annotations for the caller.
	GetItemAnnotations(ctx context.Context, appID string, membershipID int64) ([]model.ItemAnnotation, error)

	// InsertImportLog records one import attempt (outside any import
	// transaction, so failed attempts persist too).
	InsertImportLog(ctx context.Context, entry *model.ImportLog) error

	// GetImportLogs returns import audit entries, newest first.
	GetImportLogs(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error)

	// GetStats returns statistics about the profile database.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the repository connection.
	Close() error
}

// AppRepository defines registered-app data access methods.
type AppRepository interface {
	// ValidateAPIKey resolves an API key to a registered, active app.
	ValidateAPIKey(ctx context.Context, apiKey string) (*model.AppValidation, error)
}
