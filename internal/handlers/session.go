package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/shopflows/shopflows-api/internal/middleware"
	"github.com/shopflows/shopflows-api/internal/services"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// SessionHandler serves the authenticated session and the platform-admin
// org context switch.
type SessionHandler struct {
	jwtService   JWTServiceInterface
	tokenService TokenServiceInterface
	hub          HubInterface
}

func NewSessionHandler(jwtService JWTServiceInterface, tokenService TokenServiceInterface, hub HubInterface) *SessionHandler {
	return &SessionHandler{
		jwtService:   jwtService,
		tokenService: tokenService,
		hub:          hub,
	}
}

// Get returns the current session with its derived capability flags.
func (h *SessionHandler) Get(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, dto.SessionResponse{
		Session:         session,
		IsAdmin:         session.IsAdmin(),
		IsPlatformAdmin: session.IsPlatformAdmin(),
	})
}

// ManageOrg switches the session's org context. Only platform admins may
// call it; the role carries over unchanged so the caller keeps platform
// privileges inside the target org.
func (h *SessionHandler) ManageOrg(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	if !session.IsPlatformAdmin() {
		c.Forbidden("platform admin required")
		return
	}

	var req dto.ManageOrgRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if _, err := uuid.Parse(req.OrgID); err != nil {
		c.BadRequest("invalid org_id")
		return
	}

	subject, kind := middleware.GetSubject(c)
	subjectID, err := uuid.Parse(subject)
	if err != nil {
		c.Unauthorized("not authenticated")
		return
	}

	switched := session.WithOrg(req.OrgID)

	pair, err := h.jwtService.GenerateTokenPairForSubject(switched, subjectID, kind)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	ctx := context.Background()
	tokenHash := services.HashToken(pair.RefreshToken)
	if err := h.tokenService.StoreRefreshToken(ctx, pair.Subject, pair.SubjectKind, tokenHash, time.Now().Add(h.jwtService.RefreshExpiry())); err != nil {
		c.InternalServerError("failed to store refresh token")
		return
	}

	h.hub.BroadcastOrgChanged(subject, switched.OrgID, switched.Role)

	_ = c.JSON(200, dto.LoginResponse{
		Session:      switched,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
