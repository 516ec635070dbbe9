package handlers

import (
	"context"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/shopflows/shopflows-api/internal/middleware"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// FeatureHandler exposes per-org feature flags. Reads are open to any
// member of the org; writes require an admin role. Platform admins may
// address any org.
type FeatureHandler struct {
	featureService FeatureServiceInterface
}

func NewFeatureHandler(featureService FeatureServiceInterface) *FeatureHandler {
	return &FeatureHandler{featureService: featureService}
}

func (h *FeatureHandler) Get(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	orgID := c.Param("orgId")
	if orgID == "" {
		c.BadRequest("orgId is required")
		return
	}

	if !h.canAccessOrg(session, orgID) {
		c.Forbidden("access denied")
		return
	}

	flags := h.featureService.Get(context.Background(), orgID)

	_ = c.JSON(200, dto.FeatureFlagsResponse{
		OrgID: orgID,
		State: flags.State,
		Flags: flags.Flags,
	})
}

func (h *FeatureHandler) Set(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	if !session.IsAdmin() {
		c.Forbidden("admin role required")
		return
	}

	orgID := c.Param("orgId")
	name := c.Param("name")
	if orgID == "" || name == "" {
		c.BadRequest("orgId and feature name are required")
		return
	}

	if !h.canAccessOrg(session, orgID) {
		c.Forbidden("access denied")
		return
	}

	var req dto.SetFeatureRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	flags, ok := h.featureService.Set(context.Background(), orgID, name, req.Enabled)

	_ = c.JSON(200, dto.SetFeatureResponse{
		OK:    ok,
		Flags: flags.Flags,
	})
}

// canAccessOrg scopes flag access: platform admins reach any org, everyone
// else only their own.
func (h *FeatureHandler) canAccessOrg(session models.Session, orgID string) bool {
	if session.IsPlatformAdmin() {
		return true
	}
	return session.OrgID == orgID
}
