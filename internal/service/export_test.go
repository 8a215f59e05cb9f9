package service

import (
	"context"
	"testing"

	"guardian-vault-api/internal/cache"
	"guardian-vault-api/internal/model"
)

func TestExportMergesDefaultsOverDiff(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{
		committed: true,
		settings:  model.Settings{"itemSize": float64(60)},
	}

	svc := NewExportService(repo, nil, 0)
	export, err := svc.Export(ctx, "app-1", 99)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if export.Settings["itemSize"] != float64(60) {
		t.Errorf("expected override 60, got %v", export.Settings["itemSize"])
	}
	// Untouched keys come from defaults
	if export.Settings["language"] != "en" {
		t.Errorf("expected default language, got %v", export.Settings["language"])
	}
	if len(export.Settings) != len(model.DefaultSettings()) {
		t.Errorf("merged settings should cover all defaults, got %d keys", len(export.Settings))
	}
}

func TestExportUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{
		committed: true,
		settings:  model.Settings{"itemSize": float64(60)},
		loadouts: []model.Loadout{
			{ID: "lo-1", Name: "One", ClassType: model.DestinyClassUnknown, DestinyVersion: 2, PlatformMembershipID: 1},
		},
	}
	exportCache := cache.NewMemoryCache()
	defer exportCache.Close()

	svc := NewExportService(repo, exportCache, 0)

	first, err := svc.Export(ctx, "app-1", 99)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}

	// Mutate the backing store; the cached document should still be served.
	repo.loadouts = nil

	second, err := svc.Export(ctx, "app-1", 99)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if len(second.Loadouts) != len(first.Loadouts) {
		t.Errorf("expected cached export, got %d loadouts", len(second.Loadouts))
	}

	// After invalidation the fresh state is visible.
	if err := exportCache.Delete(ctx, exportCacheKey("app-1", 99)); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	third, err := svc.Export(ctx, "app-1", 99)
	if err != nil {
		t.Fatalf("third export: %v", err)
	}
	if len(third.Loadouts) != 0 {
		t.Errorf("expected fresh export after invalidation, got %d loadouts", len(third.Loadouts))
	}
}
