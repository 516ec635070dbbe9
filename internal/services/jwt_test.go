package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *JWTService {
	return NewJWTService("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestJWTService_SessionRoundTrip(t *testing.T) {
	svc := testJWTService()

	session := models.Session{
		IsAuthenticated: true,
		OrgID:           uuid.New().String(),
		Role:            models.RoleShopAdmin,
		UserID:          uuid.New().String(),
		Email:           "owner@example.com",
		Name:            "Shop Owner",
	}

	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)
	assert.Equal(t, SubjectProfile, pair.SubjectKind)
	assert.Equal(t, session.UserID, pair.Subject.String())

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session, claims.Session())
	assert.Equal(t, session.UserID, claims.Subject)
}

func TestJWTService_DeviceSessionSubject(t *testing.T) {
	svc := testJWTService()

	session := models.Session{
		IsAuthenticated: true,
		OrgID:           uuid.New().String(),
		Role:            models.RoleShopUser,
		DeviceID:        uuid.New().String(),
		DeviceName:      "Bay 2 Kiosk",
	}

	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)
	assert.Equal(t, SubjectDevice, pair.SubjectKind)
	assert.Equal(t, session.DeviceID, pair.Subject.String())
}

func TestJWTService_LegacyKioskSessionGetsEphemeralSubject(t *testing.T) {
	svc := testJWTService()

	session := models.Session{
		IsAuthenticated: true,
		OrgID:           uuid.New().String(),
		Role:            models.RoleShopUser,
		DeviceName:      "Front Desk",
	}

	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)
	assert.Equal(t, SubjectDevice, pair.SubjectKind)
	assert.NotEqual(t, uuid.Nil, pair.Subject)
}

func TestJWTService_SubjectStableAcrossReissue(t *testing.T) {
	svc := testJWTService()

	session := models.Session{
		IsAuthenticated: true,
		OrgID:           uuid.New().String(),
		Role:            models.RolePlatformAdmin,
		UserID:          uuid.New().String(),
	}

	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)

	reissued, err := svc.GenerateTokenPairForSubject(session.WithOrg(uuid.New().String()), pair.Subject, pair.SubjectKind)
	require.NoError(t, err)
	assert.Equal(t, pair.Subject, reissued.Subject)

	claims, err := svc.ValidateAccessToken(reissued.AccessToken)
	require.NoError(t, err)
	// Role survives the org switch.
	assert.Equal(t, models.RolePlatformAdmin, claims.Role)
	assert.NotEqual(t, session.OrgID, claims.OrgID)
}

func TestJWTService_RejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc := testJWTService()
	other := NewJWTService("other-secret", 15*time.Minute, 24*time.Hour)

	session := models.Session{IsAuthenticated: true, UserID: uuid.New().String(), Role: models.RoleShopUser}

	pair, err := other.GenerateTokenPair(session)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-secret", -1*time.Minute, 24*time.Hour)

	session := models.Session{IsAuthenticated: true, UserID: uuid.New().String(), Role: models.RoleShopUser}

	pair, err := svc.GenerateTokenPair(session)
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
