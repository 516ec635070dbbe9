package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DirectoryService is the Organization Directory: it resolves authenticated
// principals to profile rows and verifies login credentials. It never
// invents or adjusts roles; whatever the row says is what callers get.
type DirectoryService struct {
	db *database.DB
}

// AdminLoginResult is the normalized shape the admin-credential RPC returns.
// On failure Error carries the exact message the UI surfaces.
type AdminLoginResult struct {
	Success bool   `json:"success"`
	OrgID   string `json:"org_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewDirectoryService(db *database.DB) *DirectoryService {
	return &DirectoryService{db: db}
}

// LookupProfile resolves a principal id to its directory row. The direct
// table query is tried first; any failure falls back to the lookup_profile
// RPC. Only when both come back empty is the principal treated as having no
// profile, which is a distinct condition from bad credentials.
func (s *DirectoryService) LookupProfile(ctx context.Context, principalID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, org_id, email, full_name, role, password_hash, created_at, updated_at
		FROM profiles WHERE id = $1
	`, principalID).Scan(
		&profile.ID, &profile.OrgID, &profile.Email, &profile.FullName,
		&profile.Role, &profile.PasswordHash, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == nil {
		return &profile, nil
	}

	rpcErr := s.db.Pool.QueryRow(ctx, `
		SELECT id, org_id, email, full_name, role FROM lookup_profile($1)
	`, principalID).Scan(
		&profile.ID, &profile.OrgID, &profile.Email, &profile.FullName, &profile.Role,
	)
	if rpcErr == nil {
		return &profile, nil
	}

	if errors.Is(err, pgx.ErrNoRows) && errors.Is(rpcErr, pgx.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	// Report whichever failure was not a plain miss; an empty RPC result
	// after a transient direct-query error says nothing about the outage.
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	return nil, fmt.Errorf("profile lookup failed: %w", rpcErr)
}

// VerifyCredentials is the generic identity provider entry point: it checks
// email+password and returns only the opaque principal id. Profile
// resolution is a separate step so "authenticated but no profile" stays
// distinguishable from "wrong password".
func (s *DirectoryService) VerifyCredentials(ctx context.Context, email, password string) (uuid.UUID, error) {
	var id uuid.UUID
	var passwordHash string
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, password_hash FROM profiles WHERE email = $1
	`, email).Scan(&id, &passwordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrBadCredentials
		}
		return uuid.Nil, fmt.Errorf("credential check failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return uuid.Nil, ErrBadCredentials
	}

	return id, nil
}

// VerifyAdminCredentials is the admin-credential RPC variant: verification
// and profile resolution in one call, returning the normalized result shape.
// Only admin roles qualify; everything else reads as bad credentials so the
// endpoint leaks nothing about which emails exist.
func (s *DirectoryService) VerifyAdminCredentials(ctx context.Context, email, password string) (*AdminLoginResult, error) {
	var profile models.Profile
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, org_id, email, full_name, role, password_hash
		FROM profiles
		WHERE email = $1 AND role IN ($2, $3)
	`, email, models.RoleShopAdmin, models.RolePlatformAdmin).Scan(
		&profile.ID, &profile.OrgID, &profile.Email, &profile.FullName,
		&profile.Role, &profile.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &AdminLoginResult{Success: false, Error: "Invalid email or password"}, nil
		}
		return nil, fmt.Errorf("admin credential check failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return &AdminLoginResult{Success: false, Error: "Invalid email or password"}, nil
	}

	return &AdminLoginResult{
		Success: true,
		OrgID:   profile.OrgIDString(),
		UserID:  profile.ID.String(),
		Email:   profile.Email,
		Name:    profile.FullName,
		Role:    profile.Role,
	}, nil
}

// SetRole rewrites a profile's role by email. Used by operator tooling, not
// exposed over the API.
func (s *DirectoryService) SetRole(ctx context.Context, email, role string) (int64, error) {
	if !models.ValidRole(role) {
		return 0, fmt.Errorf("unknown role: %s", role)
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE profiles SET role = $1, org_id = CASE WHEN $1 = $2 THEN NULL ELSE org_id END, updated_at = NOW()
		WHERE email = $3
	`, role, models.RolePlatformAdmin, email)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
