package services

import "errors"

// Sentinel errors separating the user-correctable failures from transient
// backend ones. Handlers map these to the messages the UI shows; anything
// not matching them is treated as a backend failure and kept generic.
var (
	ErrBadCredentials   = errors.New("invalid email or password")
	ErrBadPIN           = errors.New("incorrect pin")
	ErrPINNotConfigured = errors.New("device pin is not configured")
	ErrProfileNotFound  = errors.New("profile not found")
)

// Refresh token subject kinds. Device sessions have no profile row, so the
// token table records what the subject id points at.
const (
	SubjectProfile = "profile"
	SubjectDevice  = "device"
)
