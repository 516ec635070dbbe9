package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/database"
	"github.com/shopflows/shopflows-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateOrganization creates a test organization with default values
func (f *Fixtures) CreateOrganization(t *testing.T) *models.Organization {
	t.Helper()
	f.counter++

	org := &models.Organization{
		Name: fmt.Sprintf("Test Shop %d", f.counter),
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, org.Name).Scan(&org.ID, &org.Name, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create test organization: %v", err)
	}

	return org
}

// ProfileOption customizes a test profile
type ProfileOption func(*models.Profile)

// WithRole sets the profile's role
func WithRole(role string) ProfileOption {
	return func(p *models.Profile) {
		p.Role = role
	}
}

// WithEmail sets the profile's email
func WithEmail(email string) ProfileOption {
	return func(p *models.Profile) {
		p.Email = email
	}
}

// WithoutOrg clears the org so the profile is global, as platform admins are
func WithoutOrg() ProfileOption {
	return func(p *models.Profile) {
		p.OrgID = nil
	}
}

// CreateProfile creates a test profile with the given password hashed
func (f *Fixtures) CreateProfile(t *testing.T, orgID uuid.UUID, password string, opts ...ProfileOption) *models.Profile {
	t.Helper()
	f.counter++

	profile := &models.Profile{
		OrgID:    &orgID,
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
		FullName: fmt.Sprintf("Test User %d", f.counter),
		Role:     models.RoleShopUser,
	}

	for _, opt := range opts {
		opt(profile)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	profile.PasswordHash = string(hash)

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (org_id, email, full_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, profile.OrgID, profile.Email, profile.FullName, profile.Role, profile.PasswordHash).Scan(
		&profile.ID, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}

	return profile
}

// CreateDevice creates a registered kiosk device with the given PIN
func (f *Fixtures) CreateDevice(t *testing.T, orgID uuid.UUID, pin string) *models.Device {
	t.Helper()
	f.counter++

	device := &models.Device{
		OrgID: orgID,
		Name:  fmt.Sprintf("Kiosk %d", f.counter),
		PIN:   pin,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO devices (org_id, name, pin)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, device.OrgID, device.Name, device.PIN).Scan(&device.ID, &device.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create test device: %v", err)
	}

	return device
}

// SetFeatures writes the org's feature flag row directly
func (f *Fixtures) SetFeatures(t *testing.T, orgID uuid.UUID, flags map[string]bool) {
	t.Helper()

	data, err := json.Marshal(flags)
	if err != nil {
		t.Fatalf("failed to encode flags: %v", err)
	}

	ctx := context.Background()
	_, err = f.db.Pool.Exec(ctx, `
		INSERT INTO organization_features (org_id, flags)
		VALUES ($1, $2)
		ON CONFLICT (org_id) DO UPDATE SET flags = EXCLUDED.flags, updated_at = NOW()
	`, orgID, data)
	if err != nil {
		t.Fatalf("failed to set test features: %v", err)
	}
}
