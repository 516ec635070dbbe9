package middleware

import (
	"strings"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/shopflows/shopflows-api/internal/models"
	"github.com/shopflows/shopflows-api/internal/services"
)

const (
	SessionKey     = "session"
	SubjectKey     = "subject"
	SubjectKindKey = "subject_kind"
)

// Auth validates the bearer token and places the session it carries into the
// request context. The session is reconstructed verbatim from the claims;
// nothing here re-derives role or org.
func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		c.Set(SessionKey, claims.Session())
		c.Set(SubjectKey, claims.Subject)
		c.Set(SubjectKindKey, claims.SubjectKind)

		c.Next()
	}
}

// GetSession returns the authenticated session, or a zero session with
// IsAuthenticated false when the request carried no valid token.
func GetSession(c *drift.Context) models.Session {
	if v, ok := c.Get(SessionKey); ok {
		if session, ok := v.(models.Session); ok {
			return session
		}
	}
	return models.Session{}
}

// GetSubject returns the token subject id string and its kind.
func GetSubject(c *drift.Context) (string, string) {
	subject := ""
	kind := ""
	if v, ok := c.Get(SubjectKey); ok {
		subject, _ = v.(string)
	}
	if v, ok := c.Get(SubjectKindKey); ok {
		kind, _ = v.(string)
	}
	return subject, kind
}
