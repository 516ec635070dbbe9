package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/pkg/dto"
)

// LoginErrorKind classifies login failures so callers can branch without
// string-matching messages.
type LoginErrorKind string

const (
	// ErrKindBadPIN covers a wrong device PIN.
	ErrKindBadPIN LoginErrorKind = "bad_pin"
	// ErrKindBadCredentials covers a wrong email/password pair.
	ErrKindBadCredentials LoginErrorKind = "bad_credentials"
	// ErrKindNoProfile covers a principal that authenticated but has no
	// profile in the directory. Distinct from bad credentials on purpose.
	ErrKindNoProfile LoginErrorKind = "no_profile"
	// ErrKindServer covers everything else.
	ErrKindServer LoginErrorKind = "server"
)

// LoginError carries the failure class and the user-facing message the
// backend produced. Messages surface as-is.
type LoginError struct {
	Kind    LoginErrorKind
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

// LoginPIN signs in with a device PIN. On failure the session store is
// untouched.
func (c *Client) LoginPIN(ctx context.Context, pin, deviceID string) (models.Session, error) {
	payload := dto.PINLoginRequest{PIN: pin, DeviceID: deviceID}
	return c.login(ctx, "/api/v1/auth/pin", payload, ErrKindBadPIN)
}

// LoginAdmin signs in with admin credentials. The backend's error string
// surfaces verbatim on rejection.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (models.Session, error) {
	payload := dto.AdminLoginRequest{Email: email, Password: password}
	return c.login(ctx, "/api/v1/auth/admin", payload, ErrKindBadCredentials)
}

// Login signs in through the general provider flow. A 403 means the
// credentials stood but no profile exists for the account.
func (c *Client) Login(ctx context.Context, email, password string) (models.Session, error) {
	payload := dto.LoginRequest{Email: email, Password: password}
	return c.login(ctx, "/api/v1/auth/login", payload, ErrKindBadCredentials)
}

func (c *Client) login(ctx context.Context, path string, payload any, unauthorizedKind LoginErrorKind) (models.Session, error) {
	resp, err := c.do(ctx, http.MethodPost, path, payload, false)
	if err != nil {
		return models.Session{}, &LoginError{Kind: ErrKindServer, Message: fmt.Sprintf("login request failed: %v", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return models.Session{}, &LoginError{Kind: unauthorizedKind, Message: readError(resp)}
	case http.StatusForbidden:
		return models.Session{}, &LoginError{Kind: ErrKindNoProfile, Message: readError(resp)}
	default:
		return models.Session{}, &LoginError{Kind: ErrKindServer, Message: readError(resp)}
	}

	var body dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.Session{}, &LoginError{Kind: ErrKindServer, Message: fmt.Sprintf("failed to decode response: %v", err)}
	}

	c.setTokens(body.AccessToken, body.RefreshToken)
	c.store.Commit(body.Session)
	c.invalidateFlags()

	return body.Session, nil
}

// Refresh exchanges the stored refresh token for a new pair. The session in
// the store stays as-is; only the tokens rotate.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token")
	}

	payload := dto.RefreshTokenRequest{RefreshToken: refreshToken}

	resp, err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", payload, false)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh failed: %s", readError(resp))
	}

	var body dto.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.setTokens(body.AccessToken, body.RefreshToken)
	return nil
}
