package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"guardian-vault-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLProfileRepository implements ProfileRepository using MySQL.
type MySQLProfileRepository struct {
	db *sql.DB
}

// NewMySQLProfileRepository creates a new MySQL profile repository.
func NewMySQLProfileRepository(dsn string) (*MySQLProfileRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createProfileTablesMySQL(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLProfileRepository] Initialized")
	return &MySQLProfileRepository{db: db}, nil
}

// createProfileTablesMySQL creates the profile tables. MySQL runs one DDL
// statement per Exec, so the statements are issued individually.
func createProfileTablesMySQL(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			app_id        VARCHAR(64) NOT NULL,
			membership_id BIGINT NOT NULL,
			settings_json TEXT NOT NULL,
			updated_at    DATETIME NOT NULL,
			PRIMARY KEY (app_id, membership_id)
		)`,
		`CREATE TABLE IF NOT EXISTS loadouts (
			app_id                 VARCHAR(64) NOT NULL,
			membership_id          BIGINT NOT NULL,
			platform_membership_id BIGINT NOT NULL,
			destiny_version        INT NOT NULL,
			loadout_id             VARCHAR(64) NOT NULL,
			name                   VARCHAR(255) NOT NULL,
			class_type             INT NOT NULL,
			clear_space            TINYINT(1) NOT NULL DEFAULT 0,
			items_json             MEDIUMTEXT NOT NULL,
			updated_at             DATETIME NOT NULL,
			PRIMARY KEY (app_id, membership_id, platform_membership_id, destiny_version, loadout_id)
		)`,
		`CREATE TABLE IF NOT EXISTS item_annotations (
			app_id                 VARCHAR(64) NOT NULL,
			membership_id          BIGINT NOT NULL,
			platform_membership_id BIGINT NOT NULL,
			destiny_version        INT NOT NULL,
			item_id                VARCHAR(32) NOT NULL,
			tag                    VARCHAR(32),
			notes                  TEXT,
			updated_at             DATETIME NOT NULL,
			PRIMARY KEY (app_id, membership_id, platform_membership_id, destiny_version, item_id)
		)`,
		`CREATE TABLE IF NOT EXISTS import_logs (
			id                BIGINT AUTO_INCREMENT PRIMARY KEY,
			app_id            VARCHAR(64) NOT NULL,
			membership_id     BIGINT NOT NULL,
			settings_count    INT NOT NULL DEFAULT 0,
			loadout_count     INT NOT NULL DEFAULT 0,
			annotation_count  INT NOT NULL DEFAULT 0,
			status            VARCHAR(16) NOT NULL,
			error_message     TEXT,
			execution_time_ms BIGINT NOT NULL DEFAULT 0,
			created_at        DATETIME NOT NULL,
			INDEX idx_import_logs_created (created_at)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Begin opens a transactional session for import writes.
func (r *MySQLProfileRepository) Begin(ctx context.Context) (ProfileTx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &mysqlProfileTx{tx: tx}, nil
}

// mysqlProfileTx implements ProfileTx over a MySQL transaction.
type mysqlProfileTx struct {
	tx   *sql.Tx
	done bool
}

// ReplaceSettings overwrites the caller's stored settings diff.
func (t *mysqlProfileTx) ReplaceSettings(ctx context.Context, appID string, membershipID int64, settings model.Settings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}

	query := `
		INSERT INTO settings (app_id, membership_id, settings_json, updated_at)
		VALUES (?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			settings_json = VALUES(settings_json),
			updated_at = NOW()`

	if _, err := t.tx.ExecContext(ctx, query, appID, membershipID, string(settingsJSON)); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// UpdateLoadout upserts one loadout.
func (t *mysqlProfileTx) UpdateLoadout(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, loadout model.Loadout) error {
	itemsJSON, err := json.Marshal(loadoutItems{Equipped: loadout.Equipped, Unequipped: loadout.Unequipped})
	if err != nil {
		return fmt.Errorf("failed to serialize loadout items: %w", err)
	}

	query := `
		INSERT INTO loadouts (app_id, membership_id, platform_membership_id, destiny_version,
			loadout_id, name, class_type, clear_space, items_json, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			class_type = VALUES(class_type),
			clear_space = VALUES(clear_space),
			items_json = VALUES(items_json),
			updated_at = NOW()`

	_, err = t.tx.ExecContext(ctx, query, appID, membershipID, platformMembershipID, destinyVersion,
		loadout.ID, loadout.Name, loadout.ClassType, loadout.ClearSpace, string(itemsJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert loadout %s: %w", loadout.ID, err)
	}
	return nil
}

// UpdateItemAnnotation upserts one item annotation.
func (t *mysqlProfileTx) UpdateItemAnnotation(ctx context.Context, appID string, membershipID, platformMembershipID int64, destinyVersion int, annotation model.ItemAnnotation) error {
	query := `
		INSERT INTO item_annotations (app_id, membership_id, platform_membership_id, destiny_version,
			item_id, tag, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			tag = VALUES(tag),
			notes = VALUES(notes),
			updated_at = NOW()`

	_, err := t.tx.ExecContext(ctx, query, appID, membershipID, platformMembershipID, destinyVersion,
		annotation.ID, annotation.Tag, annotation.Notes)
	if err != nil {
		return fmt.Errorf("failed to upsert item annotation %s: %w", annotation.ID, err)
	}
	return nil
}

// Commit makes the session's writes durable.
func (t *mysqlProfileTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the session's writes. Safe to call after Commit.
func (t *mysqlProfileTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}

// GetSettings returns the caller's stored settings diff.
func (r *MySQLProfileRepository) GetSettings(ctx context.Context, appID string, membershipID int64) (model.Settings, error) {
	query := `SELECT settings_json FROM settings WHERE app_id = ? AND membership_id = ?`

	var settingsJSON string
	err := r.db.QueryRowContext(ctx, query, appID, membershipID).Scan(&settingsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Settings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse stored settings: %w", err)
	}
	return settings, nil
}

// GetLoadouts returns all stored loadouts for the caller.
func (r *MySQLProfileRepository) GetLoadouts(ctx context.Context, appID string, membershipID int64) ([]model.Loadout, error) {
	query := `
		SELECT platform_membership_id, destiny_version, loadout_id, name, class_type, clear_space, items_json
		FROM loadouts
		WHERE app_id = ? AND membership_id = ?
		ORDER BY platform_membership_id, destiny_version, loadout_id`

	rows, err := r.db.QueryContext(ctx, query, appID, membershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loadouts: %w", err)
	}
	defer rows.Close()

	loadouts := []model.Loadout{}
	for rows.Next() {
		var l model.Loadout
		var itemsJSON string
		if err := rows.Scan(&l.PlatformMembershipID, &l.DestinyVersion, &l.ID, &l.Name, &l.ClassType, &l.ClearSpace, &itemsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan loadout: %w", err)
		}
		var items loadoutItems
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return nil, fmt.Errorf("failed to parse loadout items for %s: %w", l.ID, err)
		}
		l.Equipped = items.Equipped
		l.Unequipped = items.Unequipped
		loadouts = append(loadouts, l)
	}
	return loadouts, rows.Err()
}

// GetItemAnnotations returns all stored item annotations for the caller.
func (r *MySQLProfileRepository) GetItemAnnotations(ctx context.Context, appID string, membershipID int64) ([]model.ItemAnnotation, error) {
	query := `
		SELECT platform_membership_id, destiny_version, item_id, COALESCE(tag, ''), COALESCE(notes, '')
		FROM item_annotations
		WHERE app_id = ? AND membership_id = ?
		ORDER BY platform_membership_id, destiny_version, item_id`

	rows, err := r.db.QueryContext(ctx, query, appID, membershipID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item annotations: %w", err)
	}
	defer rows.Close()

	annotations := []model.ItemAnnotation{}
	for rows.Next() {
		var a model.ItemAnnotation
		if err := rows.Scan(&a.PlatformMembershipID, &a.DestinyVersion, &a.ID, &a.Tag, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan item annotation: %w", err)
		}
		annotations = append(annotations, a)
	}
	return annotations, rows.Err()
}

// InsertImportLog records one import attempt.
func (r *MySQLProfileRepository) InsertImportLog(ctx context.Context, entry *model.ImportLog) error {
	query := `
		INSERT INTO import_logs (app_id, membership_id, settings_count, loadout_count,
			annotation_count, status, error_message, execution_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`

	_, err := r.db.ExecContext(ctx, query, entry.AppID, entry.BungieMembershipID,
		entry.SettingsCount, entry.LoadoutCount, entry.AnnotationCount,
		entry.Status, entry.ErrorMessage, entry.ExecutionTimeMs)
	if err != nil {
		return fmt.Errorf("failed to insert import log: %w", err)
	}
	return nil
}

// GetImportLogs returns import audit entries, newest first.
func (r *MySQLProfileRepository) GetImportLogs(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import logs: %w", err)
	}

	query := `
		SELECT id, app_id, membership_id, settings_count, loadout_count, annotation_count,
			status, COALESCE(error_message, ''), execution_time_ms, created_at
		FROM import_logs
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get import logs: %w", err)
	}
	defer rows.Close()

	logs := []model.ImportLog{}
	for rows.Next() {
		var entry model.ImportLog
		if err := rows.Scan(&entry.ID, &entry.AppID, &entry.BungieMembershipID,
			&entry.SettingsCount, &entry.LoadoutCount, &entry.AnnotationCount,
			&entry.Status, &entry.ErrorMessage, &entry.ExecutionTimeMs, &entry.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, entry)
	}
	return logs, total, rows.Err()
}

// GetStats returns statistics about the profile database.
func (r *MySQLProfileRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	for _, table := range []string{"settings", "loadouts", "item_annotations", "import_logs"} {
		var count int64
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, err
		}
		stats[table] = count
	}

	var lastImport sql.NullTime
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(created_at) FROM import_logs").Scan(&lastImport); err == nil && lastImport.Valid {
		stats["last_import"] = lastImport.Time
	}

	return stats, nil
}

// Close closes the database connection.
func (r *MySQLProfileRepository) Close() error {
	return r.db.Close()
}

var (
	_ ProfileRepository = (*MySQLProfileRepository)(nil)
	_ ProfileTx         = (*mysqlProfileTx)(nil)
)
