package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/shopflows/shopflows-api/internal/middleware"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// User-facing messages for the three failure classes. Bad credentials and
// missing profiles must stay distinguishable; transient backend errors stay
// generic and never leak backend detail.
const (
	msgIncorrectPIN     = "Incorrect PIN"
	msgNoProfile        = "No profile found for this account. Contact your administrator."
	msgTryAgain         = "Something went wrong. Please try again."
	msgPINNotConfigured = "Device PIN is not configured"
)

// AuthHandler hosts the three identity resolvers. All of them converge on
// the same session shape and the same token issue path; none of them sets a
// role it did not receive verbatim from its backing source.
type AuthHandler struct {
	directoryService DirectoryServiceInterface
	deviceService    DeviceServiceInterface
	tokenService     TokenServiceInterface
	jwtService       JWTServiceInterface
	hub              HubInterface
}

func NewAuthHandler(
	directoryService DirectoryServiceInterface,
	deviceService DeviceServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	hub HubInterface,
) *AuthHandler {
	return &AuthHandler{
		directoryService: directoryService,
		deviceService:    deviceService,
		tokenService:     tokenService,
		jwtService:       jwtService,
		hub:              hub,
	}
}

// LoginPIN is the device/kiosk entry point.
func (h *AuthHandler) LoginPIN(c *drift.Context) {
	var req dto.PINLoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.PIN == "" {
		c.BadRequest("pin is required")
		return
	}

	session, err := h.deviceService.Authenticate(context.Background(), req.PIN, req.DeviceID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBadPIN):
			c.Unauthorized(msgIncorrectPIN)
		case errors.Is(err, services.ErrPINNotConfigured):
			c.InternalServerError(msgPINNotConfigured)
		default:
			log.Printf("pin login failed: %v", err)
			c.InternalServerError(msgTryAgain)
		}
		return
	}

	h.issueSession(c, session)
}

// LoginAdmin is the admin-credential entry point. The directory's normalized
// result maps straight into the session; its error string surfaces verbatim,
// the audience being trusted operators.
func (h *AuthHandler) LoginAdmin(c *drift.Context) {
	var req dto.AdminLoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	result, err := h.directoryService.VerifyAdminCredentials(context.Background(), req.Email, req.Password)
	if err != nil {
		log.Printf("admin login failed: %v", err)
		c.InternalServerError(msgTryAgain)
		return
	}

	if !result.Success {
		c.Unauthorized(result.Error)
		return
	}

	h.issueSession(c, models.Session{
		IsAuthenticated: true,
		OrgID:           result.OrgID,
		Role:            result.Role,
		UserID:          result.UserID,
		Email:           result.Email,
		Name:            result.Name,
	})
}

// Login is the generic provider entry point: credential verification yields
// an opaque principal, then the directory resolves it to a profile. A
// principal without a profile is a distinct failure from bad credentials.
func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := context.Background()

	principalID, err := h.directoryService.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.Unauthorized("Invalid email or password")
			return
		}
		log.Printf("login failed: %v", err)
		c.InternalServerError(msgTryAgain)
		return
	}

	profile, err := h.directoryService.LookupProfile(ctx, principalID)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			c.Forbidden(msgNoProfile)
			return
		}
		log.Printf("profile lookup failed: %v", err)
		c.InternalServerError(msgTryAgain)
		return
	}

	h.issueSession(c, profile.Session())
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := context.Background()

	storedSubject, _, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedSubject.String() != claims.Subject {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	if err := h.tokenService.RevokeRefreshToken(ctx, tokenHash); err != nil {
		c.InternalServerError("failed to revoke old token")
		return
	}

	// The session is reissued verbatim from the claims. Role and org changes
	// in the directory only take effect on the next full login.
	pair, err := h.jwtService.GenerateTokenPairForSubject(claims.Session(), storedSubject, claims.SubjectKind)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	if err := h.storeRefreshToken(ctx, pair); err != nil {
		c.InternalServerError("failed to store refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		_ = h.tokenService.RevokeRefreshToken(context.Background(), tokenHash)

		if claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken); err == nil {
			h.hub.BroadcastSignedOut(claims.Subject)
		}
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	subject, _ := middleware.GetSubject(c)
	subjectID, err := uuid.Parse(subject)
	if err != nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllSubjectTokens(context.Background(), subjectID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	h.hub.BroadcastSignedOut(subject)

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}

// issueSession is the common tail of every resolver: token pair, persisted
// refresh token, SIGNED_IN event, response.
func (h *AuthHandler) issueSession(c *drift.Context, session models.Session) {
	pair, err := h.jwtService.GenerateTokenPair(session)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	if err := h.storeRefreshToken(context.Background(), pair); err != nil {
		c.InternalServerError("failed to store refresh token")
		return
	}

	h.hub.BroadcastSignedIn(pair.Subject.String(), session.OrgID, session.Role)

	_ = c.JSON(200, dto.LoginResponse{
		Session:      session,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (h *AuthHandler) storeRefreshToken(ctx context.Context, pair *services.TokenPair) error {
	tokenHash := services.HashToken(pair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	return h.tokenService.StoreRefreshToken(ctx, pair.Subject, pair.SubjectKind, tokenHash, expiresAt)
}
