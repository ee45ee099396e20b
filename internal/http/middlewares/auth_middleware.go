package middlewares

import (
	"context"
	"net/http"
	"time"

	"touristhub-backend/internal/domain/user"
	"touristhub-backend/internal/session"

	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake both collaborators easily.
type SessionResolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
	users    UserLoader
}

func NewAuthMiddleware(sessions SessionResolver, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, users: users}
}

// RequireAuth resolves the session cookie to a user record and stashes it on
// the context. The store and user lookup run on every request; there is no
// caching between calls.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(session.CookieName)

		if err != nil || sid == "" {
			abortUnauthenticated(c)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		userID, err := m.sessions.Resolve(ctx, sid)

		if err != nil {
			abortUnauthenticated(c)
			return
		}

		u, err := m.users.GetByID(ctx, userID)

		if err != nil {
			// session points at a user that no longer exists
			abortUnauthenticated(c)
			return
		}

		c.Set(CtxUser, u)

		c.Next()
	}
}

// RequireRole gates a route on HasRole; mount after RequireAuth.
func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)

		if !ok {
			abortUnauthenticated(c)
			return
		}

		if !HasRole(u, required) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied. " + required + " privileges required.",
			})
			return
		}
		c.Next()
	}
}

// HasRole is the permission check on its own, usable without a server.
func HasRole(u user.User, required string) bool {
	return u.Role == required
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Not authenticated",
	})
}
