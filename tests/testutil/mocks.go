package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/events"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
	"github.com/stretchr/testify/mock"
)

// MockDirectoryService mocks the DirectoryService
type MockDirectoryService struct {
	mock.Mock
}

func (m *MockDirectoryService) LookupProfile(ctx context.Context, principalID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockDirectoryService) VerifyCredentials(ctx context.Context, email, password string) (uuid.UUID, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockDirectoryService) VerifyAdminCredentials(ctx context.Context, email, password string) (*services.AdminLoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AdminLoginResult), args.Error(1)
}

// MockDeviceService mocks the DeviceService
type MockDeviceService struct {
	mock.Mock
}

func (m *MockDeviceService) Authenticate(ctx context.Context, pin, deviceID string) (models.Session, error) {
	args := m.Called(ctx, pin, deviceID)
	return args.Get(0).(models.Session), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, subjectID uuid.UUID, subjectKind, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, subjectID, subjectKind, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, string, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.String(1), args.Error(2)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllSubjectTokens(ctx context.Context, subjectID uuid.UUID) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(session models.Session) (*services.TokenPair, error) {
	args := m.Called(session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) GenerateTokenPairForSubject(session models.Session, subject uuid.UUID, kind string) (*services.TokenPair, error) {
	args := m.Called(session, subject, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockFeatureService mocks the FeatureService
type MockFeatureService struct {
	mock.Mock
}

func (m *MockFeatureService) Get(ctx context.Context, orgID string) models.FeatureFlags {
	args := m.Called(ctx, orgID)
	return args.Get(0).(models.FeatureFlags)
}

func (m *MockFeatureService) Set(ctx context.Context, orgID, name string, enabled bool) (models.FeatureFlags, bool) {
	args := m.Called(ctx, orgID, name, enabled)
	return args.Get(0).(models.FeatureFlags), args.Bool(1)
}

// MockHub mocks the events Hub
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *events.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *events.Client) {
	m.Called(client)
}

func (m *MockHub) BroadcastSignedIn(subject, orgID, role string) {
	m.Called(subject, orgID, role)
}

func (m *MockHub) BroadcastSignedOut(subject string) {
	m.Called(subject)
}

func (m *MockHub) BroadcastOrgChanged(subject, orgID, role string) {
	m.Called(subject, orgID, role)
}
