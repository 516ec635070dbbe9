package dto

import "github.com/shopflows/shopflows-api/internal/models"

type PINLoginRequest struct {
	PIN      string `json:"pin"`
	DeviceID string `json:"device_id,omitempty"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what every resolver returns on success: the normalized
// session plus the token pair that authenticates subsequent calls.
type LoginResponse struct {
	Session      models.Session `json:"session"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresIn    int64          `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}
