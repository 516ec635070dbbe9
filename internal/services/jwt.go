package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopflows/shopflows-api/internal/models"
)

type JWTService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// Claims carry the full session shape so a token round-trips to the exact
// Session the resolver committed. Role and org_id are copied verbatim at
// issue time and never reinterpreted at validation.
type Claims struct {
	OrgID       string `json:"org_id,omitempty"`
	Role        string `json:"role,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	DeviceName  string `json:"device_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Name        string `json:"name,omitempty"`
	SubjectKind string `json:"sub_kind"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() models.Session {
	return models.Session{
		IsAuthenticated: true,
		OrgID:           c.OrgID,
		Role:            c.Role,
		UserID:          c.UserID,
		DeviceID:        c.DeviceID,
		DeviceName:      c.DeviceName,
		Email:           c.Email,
		Name:            c.Name,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Subject      uuid.UUID
	SubjectKind  string
}

func NewJWTService(secret string, accessExpiry, refreshExpiry time.Duration) *JWTService {
	return &JWTService{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// SessionSubject resolves the registered subject for a session: the profile
// id for human logins, the device id for registered kiosks, or a fresh
// ephemeral id for legacy device-only sessions that identify neither.
func SessionSubject(session models.Session) (uuid.UUID, string, error) {
	if session.UserID != "" {
		id, err := uuid.Parse(session.UserID)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("invalid user id in session: %w", err)
		}
		return id, SubjectProfile, nil
	}
	if session.DeviceID != "" {
		id, err := uuid.Parse(session.DeviceID)
		if err != nil {
			return uuid.Nil, "", fmt.Errorf("invalid device id in session: %w", err)
		}
		return id, SubjectDevice, nil
	}
	return uuid.New(), SubjectDevice, nil
}

func (s *JWTService) GenerateTokenPair(session models.Session) (*TokenPair, error) {
	subject, kind, err := SessionSubject(session)
	if err != nil {
		return nil, err
	}
	return s.GenerateTokenPairForSubject(session, subject, kind)
}

// GenerateTokenPairForSubject issues a pair bound to an already-known
// subject. Refresh and context-switch flows use it so the subject stays
// stable across reissues instead of minting a fresh ephemeral id.
func (s *JWTService) GenerateTokenPairForSubject(session models.Session, subject uuid.UUID, kind string) (*TokenPair, error) {
	now := time.Now()

	accessClaims := s.claimsFor(session, kind)
	accessClaims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "shopflows-api",
		Subject:   subject.String(),
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := s.claimsFor(session, kind)
	refreshClaims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    "shopflows-api",
		Subject:   subject.String(),
		ID:        uuid.New().String(),
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
		Subject:      subject,
		SubjectKind:  kind,
	}, nil
}

func (s *JWTService) claimsFor(session models.Session, kind string) *Claims {
	return &Claims{
		OrgID:       session.OrgID,
		Role:        session.Role,
		UserID:      session.UserID,
		DeviceID:    session.DeviceID,
		DeviceName:  session.DeviceName,
		Email:       session.Email,
		Name:        session.Name,
		SubjectKind: kind,
	}
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString)
}

// ValidateRefreshToken returns the full claims rather than just a subject:
// refreshing reissues the session verbatim, it never re-derives role or org.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString)
}

func (s *JWTService) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
