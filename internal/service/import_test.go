package service

import (
	"context"
	"errors"
	"testing"

	"guardian-vault-api/internal/cache"
	"guardian-vault-api/internal/model"
	"guardian-vault-api/internal/repository"
)

// fakeProfileRepo records transactional writes in memory, optionally
// failing the Nth loadout upsert.
type fakeProfileRepo struct {
	failLoadoutAt int // 1-based, 0 = never fail

	tx   *fakeTx
	logs []model.ImportLog

	committed   bool
	settings    model.Settings
	loadouts    []model.Loadout
	annotations []model.ItemAnnotation
}

type fakeTx struct {
	repo *fakeProfileRepo

	settings    model.Settings
	loadouts    []model.Loadout
	annotations []model.ItemAnnotation

	loadoutCalls int
	releases     int
	done         bool
}

func (r *fakeProfileRepo) Begin(ctx context.Context) (repository.ProfileTx, error) {
	r.tx = &fakeTx{repo: r}
	return r.tx, nil
}

func (t *fakeTx) ReplaceSettings(ctx context.Context, appID string, membershipID int64, settings model.Settings) error {
	t.settings = settings
	return nil
}

func (t *fakeTx) UpdateLoadout(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, loadout model.Loadout) error {
	t.loadoutCalls++
	if t.repo.failLoadoutAt > 0 && t.loadoutCalls == t.repo.failLoadoutAt {
		return errors.New("constraint violation")
	}
	t.loadouts = append(t.loadouts, loadout)
	return nil
}

func (t *fakeTx) UpdateItemAnnotation(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, annotation model.ItemAnnotation) error {
	t.annotations = append(t.annotations, annotation)
	return nil
}

func (t *fakeTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	t.releases++
	t.repo.committed = true
	t.repo.settings = t.settings
	t.repo.loadouts = t.loadouts
	t.repo.annotations = t.annotations
	return nil
}

func (t *fakeTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.releases++
	return nil
}

func (r *fakeProfileRepo) GetSettings(ctx context.Context, appID string, membershipID int64) (model.Settings, error) {
	if !r.committed {
		return model.Settings{}, nil
	}
	return r.settings, nil
}

func (r *fakeProfileRepo) GetLoadouts(ctx context.Context, appID string, membershipID int64) ([]model.Loadout, error) {
	return r.loadouts, nil
}

func (r *fakeProfileRepo) GetItemAnnotations(ctx context.Context, appID string, membershipID int64) ([]model.ItemAnnotation, error) {
	return r.annotations, nil
}

func (r *fakeProfileRepo) InsertImportLog(ctx context.Context, entry *model.ImportLog) error {
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeProfileRepo) GetImportLogs(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	return r.logs, int64(len(r.logs)), nil
}

func (r *fakeProfileRepo) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func (r *fakeProfileRepo) Close() error { return nil }

var _ repository.ProfileRepository = (*fakeProfileRepo)(nil)

const importTestBag = `{
	"settings-v1.0": {"itemSize": 60},
	"loadouts-v3.0": ["lo-1", "lo-2", "lo-3"],
	"lo-1": {"id": "lo-1", "name": "One", "membershipId": 1, "destinyVersion": 2},
	"lo-2": {"id": "lo-2", "name": "Two", "membershipId": 1, "destinyVersion": 2},
	"lo-3": {"id": "lo-3", "name": "Three", "membershipId": 1, "destinyVersion": 2},
	"dimItemInfo-m1-d2": {"42": {"tag": "keep", "notes": "good roll"}}
}`

func TestImportWritesAllSets(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{}
	svc := NewImportService(repo, nil)

	summary, err := svc.Import(ctx, "app-1", 99, bagFromJSON(t, importTestBag))
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if summary.Settings != 1 || summary.Loadouts != 3 || summary.ItemAnnotations != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if !repo.committed {
		t.Fatal("expected transaction to commit")
	}
	if len(repo.loadouts) != 3 || len(repo.annotations) != 1 {
		t.Errorf("committed %d loadouts, %d annotations", len(repo.loadouts), len(repo.annotations))
	}
	if repo.settings["itemSize"] != float64(60) {
		t.Errorf("unexpected committed settings: %v", repo.settings)
	}

	if len(repo.logs) != 1 || repo.logs[0].Status != "success" {
		t.Errorf("unexpected audit log: %+v", repo.logs)
	}
}

func TestImportRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{failLoadoutAt: 2}
	svc := NewImportService(repo, nil)

	_, err := svc.Import(ctx, "app-1", 99, bagFromJSON(t, importTestBag))
	if err == nil {
		t.Fatal("expected import to fail")
	}

	if repo.committed {
		t.Error("expected rollback, but transaction committed")
	}
	settings, _ := repo.GetSettings(ctx, "app-1", 99)
	if len(settings) != 0 {
		t.Errorf("settings observable after rollback: %v", settings)
	}

	if len(repo.logs) != 1 {
		t.Fatalf("expected 1 audit log, got %d", len(repo.logs))
	}
	if repo.logs[0].Status != "failed" || repo.logs[0].ErrorMessage == "" {
		t.Errorf("unexpected audit log: %+v", repo.logs[0])
	}
}

func TestImportReleasesSessionOnce(t *testing.T) {
	ctx := context.Background()

	for name, repo := range map[string]*fakeProfileRepo{
		"success": {},
		"failure": {failLoadoutAt: 1},
	} {
		svc := NewImportService(repo, nil)
		_, _ = svc.Import(ctx, "app-1", 99, bagFromJSON(t, importTestBag))

		if repo.tx == nil {
			t.Fatalf("%s: no transaction begun", name)
		}
		if repo.tx.releases != 1 {
			t.Errorf("%s: session released %d times, want 1", name, repo.tx.releases)
		}
	}
}

func TestImportInvalidatesExportCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{}
	exportCache := cache.NewMemoryCache()
	defer exportCache.Close()

	key := exportCacheKey("app-1", 99)
	if err := exportCache.Set(ctx, key, []byte(`{}`), DefaultExportTTL); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	svc := NewImportService(repo, exportCache)
	if _, err := svc.Import(ctx, "app-1", 99, bagFromJSON(t, importTestBag)); err != nil {
		t.Fatalf("import: %v", err)
	}

	if _, err := exportCache.Get(ctx, key); err != cache.ErrCacheMiss {
		t.Errorf("expected cached export to be invalidated, got err=%v", err)
	}
}

func TestImportFailureKeepsExportCache(t *testing.T) {
	ctx := context.Background()
	repo := &fakeProfileRepo{failLoadoutAt: 1}
	exportCache := cache.NewMemoryCache()
	defer exportCache.Close()

	key := exportCacheKey("app-1", 99)
	exportCache.Set(ctx, key, []byte(`{}`), DefaultExportTTL)

	svc := NewImportService(repo, exportCache)
	if _, err := svc.Import(ctx, "app-1", 99, bagFromJSON(t, importTestBag)); err == nil {
		t.Fatal("expected import to fail")
	}

	if _, err := exportCache.Get(ctx, key); err != nil {
		t.Errorf("cache entry should survive a failed import, got err=%v", err)
	}
}
