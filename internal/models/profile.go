package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the Organization Directory row behind a human login. OrgID is
// nil for platform admins that are not pinned to a tenant.
type Profile struct {
	ID           uuid.UUID  `json:"id"`
	OrgID        *uuid.UUID `json:"org_id,omitempty"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrgIDString flattens the nullable org reference into the session's
// string-typed scoping key.
func (p *Profile) OrgIDString() string {
	if p.OrgID == nil {
		return ""
	}
	return p.OrgID.String()
}

func (p *Profile) Session() Session {
	return Session{
		IsAuthenticated: true,
		OrgID:           p.OrgIDString(),
		Role:            p.Role,
		UserID:          p.ID.String(),
		Email:           p.Email,
		Name:            p.FullName,
	}
}
