package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"guardian-vault-api/internal/cache"
	"guardian-vault-api/internal/model"
	"guardian-vault-api/internal/repository"
)

// DefaultExportTTL is how long a cached export stays fresh. Imports
// invalidate the entry early.
const DefaultExportTTL = 5 * time.Minute

// ExportService assembles a caller's full stored profile for export.
type ExportService struct {
	profileRepo repository.ProfileRepository
	cache       cache.Cache
	cacheTTL    time.Duration
}

// NewExportService creates a new export service.
// Returns nil if profileRepo is nil (required dependency).
func NewExportService(profileRepo repository.ProfileRepository, exportCache cache.Cache, cacheTTL time.Duration) *ExportService {
	if profileRepo == nil {
		return nil
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultExportTTL
	}
	return &ExportService{
		profileRepo: profileRepo,
		cache:       exportCache,
		cacheTTL:    cacheTTL,
	}
}

// exportCacheKey names the cached export for one caller.
func exportCacheKey(appID string, membershipID int64) string {
	return fmt.Sprintf("guardianvault:export:%s:%d", appID, membershipID)
}

// Export returns everything stored for the caller, with the settings diff
// merged back over the defaults. Served from cache when possible; cache
// trouble falls back to the database.
func (s *ExportService) Export(ctx context.Context, appID string, membershipID int64) (*model.ProfileExport, error) {
	if s.cache != nil {
		data, err := s.cache.GetOrSet(ctx, exportCacheKey(appID, membershipID), s.cacheTTL, func() ([]byte, error) {
			export, err := s.buildExport(ctx, appID, membershipID)
			if err != nil {
				return nil, err
			}
			return json.Marshal(export)
		})
		if err == nil {
			var export model.ProfileExport
			if err := json.Unmarshal(data, &export); err == nil {
				return &export, nil
			}
		} else {
			log.Printf("[ExportService] Cache unavailable, serving from database: %v", err)
		}
	}

	return s.buildExport(ctx, appID, membershipID)
}

// buildExport reads the three record sets from storage.
func (s *ExportService) buildExport(ctx context.Context, appID string, membershipID int64) (*model.ProfileExport, error) {
	diff, err := s.profileRepo.GetSettings(ctx, appID, membershipID)
	if err != nil {
		return nil, err
	}
	loadouts, err := s.profileRepo.GetLoadouts(ctx, appID, membershipID)
	if err != nil {
		return nil, err
	}
	annotations, err := s.profileRepo.GetItemAnnotations(ctx, appID, membershipID)
	if err != nil {
		return nil, err
	}

	return &model.ProfileExport{
		Settings:        diff.Merge(model.DefaultSettings()),
		Loadouts:        loadouts,
		ItemAnnotations: annotations,
		ExportedAt:      time.Now().UTC(),
	}, nil
}
