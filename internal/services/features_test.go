package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFeatureService(t *testing.T) (*FeatureService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewFeatureService(db), mock
}

func TestFeatureService_Get_NoRowReturnsDefaults(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(pgx.ErrNoRows)

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsDefaults, flags.State)
	assert.True(t, flags.HasFeature(models.FeatureLaborTracking))
	assert.True(t, flags.HasFeature(models.FeatureMessaging))
	assert.False(t, flags.HasFeature(models.FeatureInventory))
	assert.False(t, flags.HasFeature(models.FeatureInvoicing))
	assert.False(t, flags.HasFeature(models.FeatureAIAssistant))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_StoredFlagsOverlayDefaults(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnRows(pgxmock.NewRows([]string{"flags"}).
			AddRow([]byte(`{"inventory": true, "messaging": false}`)))

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsMaterialized, flags.State)
	assert.True(t, flags.HasFeature(models.FeatureInventory))
	assert.False(t, flags.HasFeature(models.FeatureMessaging))
	// Untouched keys keep their defaults.
	assert.True(t, flags.HasFeature(models.FeatureLaborTracking))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_MissingTableIsSchemaNotReady(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(&pgconn.PgError{Code: pgUndefinedTable})

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsSchemaNotReady, flags.State)
	assert.True(t, flags.HasFeature(models.FeatureLaborTracking))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_MissingColumnIsSchemaNotReady(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(&pgconn.PgError{Code: pgUndefinedColumn})

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsSchemaNotReady, flags.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_QueryErrorDegradesToDefaults(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(errors.New("connection reset"))

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsDefaults, flags.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_CorruptFlagsDegradeToDefaults(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnRows(pgxmock.NewRows([]string{"flags"}).AddRow([]byte(`not json`)))

	flags := svc.Get(context.Background(), orgID.String())

	assert.Equal(t, models.FlagsDefaults, flags.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Get_InvalidOrgIDReturnsDefaults(t *testing.T) {
	svc, _ := setupFeatureService(t)

	flags := svc.Get(context.Background(), "not-a-uuid")

	assert.Equal(t, models.FlagsDefaults, flags.State)
}

func TestFeatureService_Set_Success(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectExec(`INSERT INTO organization_features`).
		WithArgs(orgID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	flags, ok := svc.Set(context.Background(), orgID.String(), models.FeatureInventory, true)

	assert.True(t, ok)
	assert.Equal(t, models.FlagsMaterialized, flags.State)
	assert.True(t, flags.HasFeature(models.FeatureInventory))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeatureService_Set_WriteFailureLeavesFlagsUnchanged(t *testing.T) {
	svc, mock := setupFeatureService(t)
	orgID := uuid.New()

	mock.ExpectQuery(`SELECT flags FROM organization_features`).
		WithArgs(orgID).
		WillReturnError(pgx.ErrNoRows)

	mock.ExpectExec(`INSERT INTO organization_features`).
		WithArgs(orgID, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	flags, ok := svc.Set(context.Background(), orgID.String(), models.FeatureInventory, true)

	assert.False(t, ok)
	assert.False(t, flags.HasFeature(models.FeatureInventory))
	assert.NoError(t, mock.ExpectationsWereMet())
}
