package service

import (
	"context"
	"log"
	"time"

	"guardian-vault-api/internal/cache"
	"guardian-vault-api/internal/model"
	"guardian-vault-api/internal/repository"
)

// ImportService handles one-shot imports of exported profile data.
type ImportService struct {
	profileRepo repository.ProfileRepository
	exportCache cache.Cache
}

// NewImportService creates a new import service.
// Returns nil if profileRepo is nil (required dependency).
func NewImportService(profileRepo repository.ProfileRepository, exportCache cache.Cache) *ImportService {
	if profileRepo == nil {
		return nil
	}
	return &ImportService{
		profileRepo: profileRepo,
		exportCache: exportCache,
	}
}

// Import normalizes the bag into settings, loadouts, and item annotations,
// then writes all three sets in a single transaction: either everything
// becomes durable or nothing does. Records already stored but absent from
// the import are left in place (upsert only, never delete).
//
// Every attempt is recorded in the import audit log, including failures.
func (s *ImportService) Import(ctx context.Context, appID string, membershipID int64, bag model.ImportBag) (*model.ImportSummary, error) {
	start := time.Now()

	settings := ExtractSettings(bag, model.DefaultSettings())
	loadouts := ExtractLoadouts(bag)
	annotations := ExtractItemAnnotations(bag)

	summary := &model.ImportSummary{
		Settings:        len(settings),
		Loadouts:        len(loadouts),
		ItemAnnotations: len(annotations),
	}

	err := s.writeAll(ctx, appID, membershipID, settings, loadouts, annotations)
	s.audit(ctx, appID, membershipID, summary, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	s.invalidateExport(ctx, appID, membershipID)

	log.Printf("[ImportService] Imported %d settings, %d loadouts, %d annotations for membership %d",
		summary.Settings, summary.Loadouts, summary.ItemAnnotations, membershipID)
	return summary, nil
}

// writeAll performs the all-or-nothing write. The deferred Rollback releases
// the session on every exit path and is a no-op once Commit succeeds.
// Writes are strictly sequential, one upsert at a time.
func (s *ImportService) writeAll(ctx context.Context, appID string, membershipID int64,
	settings model.Settings, loadouts []model.Loadout, annotations []model.ItemAnnotation) error {

	tx, err := s.profileRepo.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.ReplaceSettings(ctx, appID, membershipID, settings); err != nil {
		return err
	}
	for _, loadout := range loadouts {
		if err := tx.UpdateLoadout(ctx, appID, membershipID, loadout.PlatformMembershipID, loadout.DestinyVersion, loadout); err != nil {
			return err
		}
	}
	for _, annotation := range annotations {
		if err := tx.UpdateItemAnnotation(ctx, appID, membershipID, annotation.PlatformMembershipID, annotation.DestinyVersion, annotation); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// audit records the attempt in the import log, outside the import
// transaction so failed attempts persist too. Audit failures are logged,
// never surfaced.
func (s *ImportService) audit(ctx context.Context, appID string, membershipID int64,
	summary *model.ImportSummary, importErr error, elapsed time.Duration) {

	entry := &model.ImportLog{
		AppID:              appID,
		BungieMembershipID: membershipID,
		SettingsCount:      summary.Settings,
		LoadoutCount:       summary.Loadouts,
		AnnotationCount:    summary.ItemAnnotations,
		Status:             "success",
		ExecutionTimeMs:    elapsed.Milliseconds(),
	}
	if importErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = importErr.Error()
	}

	if err := s.profileRepo.InsertImportLog(ctx, entry); err != nil {
		log.Printf("[ImportService] Failed to record import log: %v", err)
	}
}

// invalidateExport drops the caller's cached export after a successful import.
func (s *ImportService) invalidateExport(ctx context.Context, appID string, membershipID int64) {
	if s.exportCache == nil {
		return
	}
	if err := s.exportCache.Delete(ctx, exportCacheKey(appID, membershipID)); err != nil {
		log.Printf("[ImportService] Failed to invalidate export cache: %v", err)
	}
}
