package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopflows/shopflows-api/internal/config"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
	"github.com/shopflows/shopflows-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryService_Integration_AdminLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewDirectoryService(tdb.DB)
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	admin := fixtures.CreateProfile(t, org.ID, "owner-pass", testutil.WithRole(models.RoleShopAdmin))

	result, err := svc.VerifyAdminCredentials(ctx, admin.Email, "owner-pass")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, org.ID.String(), result.OrgID)
	assert.Equal(t, models.RoleShopAdmin, result.Role)

	// Wrong password reads the same as an unknown email.
	result, err = svc.VerifyAdminCredentials(ctx, admin.Email, "wrong")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid email or password", result.Error)
}

func TestDirectoryService_Integration_NonAdminCannotAdminLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewDirectoryService(tdb.DB)
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	tech := fixtures.CreateProfile(t, org.ID, "tech-pass")

	result, err := svc.VerifyAdminCredentials(ctx, tech.Email, "tech-pass")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid email or password", result.Error)
}

func TestDirectoryService_Integration_LoginAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewDirectoryService(tdb.DB)
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	tech := fixtures.CreateProfile(t, org.ID, "tech-pass")

	principalID, err := svc.VerifyCredentials(ctx, tech.Email, "tech-pass")
	require.NoError(t, err)
	assert.Equal(t, tech.ID, principalID)

	profile, err := svc.LookupProfile(ctx, principalID)
	require.NoError(t, err)
	assert.Equal(t, tech.Email, profile.Email)
	assert.Equal(t, models.RoleShopUser, profile.Role)
	require.NotNil(t, profile.OrgID)
	assert.Equal(t, org.ID, *profile.OrgID)
}

func TestDeviceService_Integration_PINLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewDeviceService(tdb.DB, config.KioskConfig{})
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	device := fixtures.CreateDevice(t, org.ID, "1234")

	session, err := svc.Authenticate(ctx, "1234", device.ID.String())
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated)
	assert.Equal(t, org.ID.String(), session.OrgID)
	assert.Equal(t, models.RoleShopUser, session.Role)
	assert.Equal(t, device.Name, session.DeviceName)

	_, err = svc.Authenticate(ctx, "0000", device.ID.String())
	assert.ErrorIs(t, err, services.ErrBadPIN)
}

func TestTokenService_Integration_RefreshRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	tokenSvc := services.NewTokenService(tdb.DB)
	jwtSvc := testutil.TestJWTService()
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	admin := fixtures.CreateProfile(t, org.ID, "owner-pass", testutil.WithRole(models.RoleShopAdmin))

	pair, err := jwtSvc.GenerateTokenPair(models.Session{
		IsAuthenticated: true,
		OrgID:           org.ID.String(),
		Role:            models.RoleShopAdmin,
		UserID:          admin.ID.String(),
		Email:           admin.Email,
	})
	require.NoError(t, err)

	tokenHash := services.HashToken(pair.RefreshToken)
	err = tokenSvc.StoreRefreshToken(ctx, pair.Subject, pair.SubjectKind, tokenHash, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	subjectID, subjectKind, err := tokenSvc.ValidateRefreshToken(ctx, tokenHash)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, subjectID)
	assert.Equal(t, services.SubjectProfile, subjectKind)

	require.NoError(t, tokenSvc.RevokeRefreshToken(ctx, tokenHash))

	_, _, err = tokenSvc.ValidateRefreshToken(ctx, tokenHash)
	assert.Error(t, err)
}

func TestDirectoryService_Integration_LookupProfileRPC(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	ctx := context.Background()

	org := fixtures.CreateOrganization(t)
	tech := fixtures.CreateProfile(t, org.ID, "tech-pass")

	// The migration installs the lookup_profile function; call it directly.
	var email, role string
	err := tdb.DB.Pool.QueryRow(ctx, `SELECT email, role FROM lookup_profile($1)`, tech.ID).
		Scan(&email, &role)
	require.NoError(t, err)
	assert.Equal(t, tech.Email, email)
	assert.Equal(t, models.RoleShopUser, role)
}
