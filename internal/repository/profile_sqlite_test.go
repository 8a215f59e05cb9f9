package repository

import (
	"context"
	"path/filepath"
	"testing"

	"guardian-vault-api/internal/model"
)

func newTestRepo(t *testing.T) *SQLiteProfileRepository {
	t.Helper()
	dir := t.TempDir()
	r, err := NewSQLiteProfileRepository(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestReplaceSettingsIsFullReplace(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	tx, err := r.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.ReplaceSettings(ctx, "app", 1, model.Settings{"a": float64(1), "b": "x"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	tx, _ = r.Begin(ctx)
	if err := tx.ReplaceSettings(ctx, "app", 1, model.Settings{"c": true}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := r.GetSettings(ctx, "app", 1)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if len(got) != 1 || got["c"] != true {
		t.Errorf("expected full replace with {c: true}, got %v", got)
	}
}

func TestUpdateLoadoutUpserts(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	loadout := model.Loadout{
		ID:                   "lo-1",
		Name:                 "Raid",
		ClassType:            model.DestinyClassWarlock,
		ClearSpace:           true,
		Equipped:             []model.LoadoutItem{{ID: "111", Hash: 10, Amount: 1}},
		Unequipped:           []model.LoadoutItem{{ID: "222", Hash: 20, Amount: 2}},
		PlatformMembershipID: 4611686018429783292,
		DestinyVersion:       2,
	}

	tx, _ := r.Begin(ctx)
	if err := tx.UpdateLoadout(ctx, "app", 1, loadout.PlatformMembershipID, loadout.DestinyVersion, loadout); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Second upsert with the same key updates in place
	loadout.Name = "Raid v2"
	tx, _ = r.Begin(ctx)
	if err := tx.UpdateLoadout(ctx, "app", 1, loadout.PlatformMembershipID, loadout.DestinyVersion, loadout); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := r.GetLoadouts(ctx, "app", 1)
	if err != nil {
		t.Fatalf("get loadouts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 loadout after two upserts, got %d", len(got))
	}
	l := got[0]
	if l.Name != "Raid v2" || l.ClassType != model.DestinyClassWarlock || !l.ClearSpace {
		t.Errorf("unexpected loadout: %+v", l)
	}
	if l.PlatformMembershipID != 4611686018429783292 || l.DestinyVersion != 2 {
		t.Errorf("partition fields lost: %+v", l)
	}
	if len(l.Equipped) != 1 || l.Equipped[0].Hash != 10 {
		t.Errorf("unexpected equipped items: %+v", l.Equipped)
	}
	if len(l.Unequipped) != 1 || l.Unequipped[0].Amount != 2 {
		t.Errorf("unexpected unequipped items: %+v", l.Unequipped)
	}
}

func TestUpdateItemAnnotationUpserts(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	a := model.ItemAnnotation{ID: "123", Tag: "favorite", Notes: "x", PlatformMembershipID: 7, DestinyVersion: 1}

	tx, _ := r.Begin(ctx)
	if err := tx.UpdateItemAnnotation(ctx, "app", 1, a.PlatformMembershipID, a.DestinyVersion, a); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	a.Tag = "junk"
	if err := tx.UpdateItemAnnotation(ctx, "app", 1, a.PlatformMembershipID, a.DestinyVersion, a); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got, err := r.GetItemAnnotations(ctx, "app", 1)
	if err != nil {
		t.Fatalf("get annotations: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 annotation, got %d", len(got))
	}
	if got[0].Tag != "junk" || got[0].Notes != "x" {
		t.Errorf("unexpected annotation: %+v", got[0])
	}
}

func TestRollbackDiscardsAllWrites(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	tx, err := r.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := tx.ReplaceSettings(ctx, "app", 1, model.Settings{"a": float64(1)}); err != nil {
		t.Fatalf("replace settings: %v", err)
	}
	loadout := model.Loadout{ID: "lo-1", Name: "Raid", PlatformMembershipID: 1, DestinyVersion: 2}
	if err := tx.UpdateLoadout(ctx, "app", 1, 1, 2, loadout); err != nil {
		t.Fatalf("upsert loadout: %v", err)
	}
	a := model.ItemAnnotation{ID: "123", Tag: "favorite", PlatformMembershipID: 1, DestinyVersion: 2}
	if err := tx.UpdateItemAnnotation(ctx, "app", 1, 1, 2, a); err != nil {
		t.Fatalf("upsert annotation: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	settings, err := r.GetSettings(ctx, "app", 1)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if len(settings) != 0 {
		t.Errorf("settings observable after rollback: %v", settings)
	}
	loadouts, _ := r.GetLoadouts(ctx, "app", 1)
	if len(loadouts) != 0 {
		t.Errorf("loadouts observable after rollback: %+v", loadouts)
	}
	annotations, _ := r.GetItemAnnotations(ctx, "app", 1)
	if len(annotations) != 0 {
		t.Errorf("annotations observable after rollback: %+v", annotations)
	}
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	tx, _ := r.Begin(ctx)
	if err := tx.ReplaceSettings(ctx, "app", 1, model.Settings{"a": float64(1)}); err != nil {
		t.Fatalf("replace settings: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Errorf("rollback after commit should be a no-op, got %v", err)
	}

	settings, _ := r.GetSettings(ctx, "app", 1)
	if len(settings) != 1 {
		t.Errorf("commit undone by late rollback: %v", settings)
	}
}

func TestImportLogsPagination(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	for i := 0; i < 3; i++ {
		entry := &model.ImportLog{
			AppID:              "app",
			BungieMembershipID: 1,
			LoadoutCount:       i,
			Status:             "success",
		}
		if err := r.InsertImportLog(ctx, entry); err != nil {
			t.Fatalf("insert log %d: %v", i, err)
		}
	}

	logs, total, err := r.GetImportLogs(ctx, 2, 0)
	if err != nil {
		t.Fatalf("get logs: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	// Newest first
	if logs[0].LoadoutCount != 2 {
		t.Errorf("expected newest entry first, got %+v", logs[0])
	}
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	tx, _ := r.Begin(ctx)
	tx.ReplaceSettings(ctx, "app", 1, model.Settings{})
	tx.Commit()

	stats, err := r.GetStats(ctx)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats["settings"] != int64(1) {
		t.Errorf("expected 1 settings row, got %v", stats["settings"])
	}
	if stats["loadouts"] != int64(0) {
		t.Errorf("expected 0 loadout rows, got %v", stats["loadouts"])
	}
}
