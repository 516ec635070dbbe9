package dto

import "github.com/shopflows/shopflows-api/internal/models"

// SessionResponse carries the session plus its derived capability flags.
// The flags are derivations, never stored; clients may recompute them but
// must not invent others.
type SessionResponse struct {
	Session         models.Session `json:"session"`
	IsAdmin         bool           `json:"is_admin"`
	IsPlatformAdmin bool           `json:"is_platform_admin"`
}

type ManageOrgRequest struct {
	OrgID string `json:"org_id"`
}
