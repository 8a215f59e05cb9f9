package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"guardian-vault-api/internal/model"
)

// MySQLAppRepository implements AppRepository using MySQL.
type MySQLAppRepository struct {
	db *sql.DB
}

// NewMySQLAppRepository creates a new MySQL app repository.
func NewMySQLAppRepository(db *sql.DB) *MySQLAppRepository {
	return &MySQLAppRepository{db: db}
}

// ValidateAPIKey resolves an API key to a registered, active app.
func (r *MySQLAppRepository) ValidateAPIKey(ctx context.Context, apiKey string) (*model.AppValidation, error) {
	log.Printf("[AppRepository] Validating API key")

	query := `
		SELECT app_id, name, origin
		FROM registered_apps
		WHERE api_key = ?
		  AND is_active = 1
		LIMIT 1`

	var result model.AppValidation
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(
		&result.AppID,
		&result.Name,
		&result.Origin,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("unknown or inactive API key")
		}
		return nil, fmt.Errorf("failed to validate API key: %w", err)
	}

	return &result, nil
}

// Ensure MySQLAppRepository implements AppRepository
var _ AppRepository = (*MySQLAppRepository)(nil)
