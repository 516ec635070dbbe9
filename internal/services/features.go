package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
)

// Postgres error codes for a missing table or column. Either means the
// feature schema has not been provisioned yet, which is reported as
// SchemaNotReady rather than passed off as intended defaults.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// FeatureService reads and writes per-organization feature flags. Reads
// never fail: anything that prevents loading a materialized flag set
// degrades to the hardcoded defaults, because flags only gate optional UI
// modules and must not take a page down with them.
type FeatureService struct {
	db *database.DB
}

func NewFeatureService(db *database.DB) *FeatureService {
	return &FeatureService{db: db}
}

func (s *FeatureService) Get(ctx context.Context, orgID string) models.FeatureFlags {
	id, err := uuid.Parse(orgID)
	if err != nil {
		return models.DefaultFeatureFlags(orgID, models.FlagsDefaults)
	}

	var raw []byte
	err = s.db.Pool.QueryRow(ctx, `
		SELECT flags FROM organization_features WHERE org_id = $1
	`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultFeatureFlags(orgID, models.FlagsDefaults)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgUndefinedTable || pgErr.Code == pgUndefinedColumn) {
			return models.DefaultFeatureFlags(orgID, models.FlagsSchemaNotReady)
		}
		log.Printf("feature flag read failed for org %s: %v", orgID, err)
		return models.DefaultFeatureFlags(orgID, models.FlagsDefaults)
	}

	var stored map[string]bool
	if err := json.Unmarshal(raw, &stored); err != nil {
		log.Printf("corrupt feature flags for org %s: %v", orgID, err)
		return models.DefaultFeatureFlags(orgID, models.FlagsDefaults)
	}

	// Keys the stored map does not mention keep their defaults, so adding a
	// new flag does not require backfilling every org row.
	flags := models.DefaultFeatureFlags(orgID, models.FlagsMaterialized)
	for name, enabled := range stored {
		flags.Flags[name] = enabled
	}
	return flags
}

// Set persists the full updated flag map and reports success as a boolean.
// The returned flag set reflects the store only when ok is true; callers
// must not apply the change locally before that.
func (s *FeatureService) Set(ctx context.Context, orgID, name string, enabled bool) (models.FeatureFlags, bool) {
	current := s.Get(ctx, orgID)

	id, err := uuid.Parse(orgID)
	if err != nil {
		return current, false
	}

	updated := make(map[string]bool, len(current.Flags))
	for k, v := range current.Flags {
		updated[k] = v
	}
	updated[name] = enabled

	raw, err := json.Marshal(updated)
	if err != nil {
		return current, false
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO organization_features (org_id, flags)
		VALUES ($1, $2)
		ON CONFLICT (org_id) DO UPDATE SET flags = $2, updated_at = NOW()
	`, id, raw)
	if err != nil {
		log.Printf("feature flag write failed for org %s: %v", orgID, err)
		return current, false
	}

	current.Flags = updated
	current.State = models.FlagsMaterialized
	return current, true
}
