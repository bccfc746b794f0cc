package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/campushub/internal/actorctx"
	"github.com/geocoder89/campushub/internal/auth"
	"github.com/geocoder89/campushub/internal/domain/user"
	"github.com/geocoder89/campushub/internal/policy"
	"github.com/gin-gonic/gin"
)

// Keep these small so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type SessionReader interface {
	Identity(r *http.Request) (string, user.Role, bool)
}

type AuthMiddleware struct {
	jwt      TokenVerifier
	sessions SessionReader
}

// NewAuthMiddleware accepts a nil SessionReader when cookie logins are off.
func NewAuthMiddleware(jwt TokenVerifier, sessions SessionReader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, sessions: sessions}
}

type authResult int

const (
	authNone authResult = iota
	authOK
	authInvalid
)

// resolve prefers the Authorization header; a session cookie is only
// consulted when no header was sent.
func (m *AuthMiddleware) resolve(c *gin.Context) (policy.Actor, authResult) {
	header := c.GetHeader("Authorization")
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return policy.Actor{}, authInvalid
		}

		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
		if raw == "" {
			return policy.Actor{}, authInvalid
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			return policy.Actor{}, authInvalid
		}
		return policy.Actor{ID: claims.UserID, Role: claims.Role}, authOK
	}

	if m.sessions != nil {
		if id, role, ok := m.sessions.Identity(c.Request); ok {
			return policy.Actor{ID: id, Role: role}, authOK
		}
	}

	return policy.Actor{}, authNone
}

func setActor(c *gin.Context, a policy.Actor) {
	c.Request = c.Request.WithContext(actorctx.WithActor(c.Request.Context(), a))
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, res := m.resolve(c)

		switch res {
		case authInvalid:
			abortError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token", nil)
			return
		case authNone:
			abortError(c, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}

		setActor(c, actor)
		c.Next()
	}
}

// OptionalAuth identifies the caller when possible and never rejects.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, res := m.resolve(c); res == authOK {
			setActor(c, actor)
		}
		c.Next()
	}
}

// ActorFromContext returns the caller, or the anonymous actor.
func ActorFromContext(c *gin.Context) policy.Actor {
	a, _ := actorctx.ActorFrom(c.Request.Context())
	return a
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	a, ok := actorctx.ActorFrom(c.Request.Context())
	return a.ID, ok
}
