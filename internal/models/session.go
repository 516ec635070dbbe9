package models

// Roles are copied verbatim from the directory; client and server code never
// infers or upgrades them.
const (
	RolePlatformAdmin = "platform_admin"
	RoleShopAdmin     = "shop_admin"
	RoleSupervisor    = "supervisor"
	RoleShopUser      = "shop_user"
)

func ValidRole(role string) bool {
	switch role {
	case RolePlatformAdmin, RoleShopAdmin, RoleSupervisor, RoleShopUser:
		return true
	}
	return false
}

// Session is the record of an authenticated identity. OrgID is the sole
// multi-tenancy scoping key; an unauthenticated session carries no other
// meaningful fields. OrgID may be empty for a platform admin browsing
// globally with no org selected.
type Session struct {
	IsAuthenticated bool   `json:"is_authenticated"`
	OrgID           string `json:"org_id,omitempty"`
	Role            string `json:"role,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	DeviceID        string `json:"device_id,omitempty"`
	DeviceName      string `json:"device_name,omitempty"`
	Email           string `json:"email,omitempty"`
	Name            string `json:"name,omitempty"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleShopAdmin || s.Role == RolePlatformAdmin
}

func (s Session) IsPlatformAdmin() bool {
	return s.Role == RolePlatformAdmin
}

// WithOrg returns a copy of the session scoped to the target organization.
// Role is preserved: a platform admin managing a tenant is indistinguishable
// from one acting as themselves. Callers are responsible for invoking this
// only for platform admins; the derivation layer does not enforce it.
func (s Session) WithOrg(orgID string) Session {
	s.OrgID = orgID
	return s
}
