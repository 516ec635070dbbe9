package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/events"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
)

// DirectoryServiceInterface defines the methods used by handlers from DirectoryService
type DirectoryServiceInterface interface {
	LookupProfile(ctx context.Context, principalID uuid.UUID) (*models.Profile, error)
	VerifyCredentials(ctx context.Context, email, password string) (uuid.UUID, error)
	VerifyAdminCredentials(ctx context.Context, email, password string) (*services.AdminLoginResult, error)
}

// DeviceServiceInterface defines the methods used by handlers from DeviceService
type DeviceServiceInterface interface {
	Authenticate(ctx context.Context, pin, deviceID string) (models.Session, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, subjectID uuid.UUID, subjectKind, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, string, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllSubjectTokens(ctx context.Context, subjectID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(session models.Session) (*services.TokenPair, error)
	GenerateTokenPairForSubject(session models.Session, subject uuid.UUID, kind string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (*services.Claims, error)
	RefreshExpiry() time.Duration
}

// FeatureServiceInterface defines the methods used by handlers from FeatureService
type FeatureServiceInterface interface {
	Get(ctx context.Context, orgID string) models.FeatureFlags
	Set(ctx context.Context, orgID, name string, enabled bool) (models.FeatureFlags, bool)
}

// HubInterface defines the methods used by handlers from the events Hub
type HubInterface interface {
	Register(client *events.Client)
	Unregister(client *events.Client)
	BroadcastSignedIn(subject, orgID, role string)
	BroadcastSignedOut(subject string)
	BroadcastOrgChanged(subject, orgID, role string)
}
