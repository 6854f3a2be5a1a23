package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"attendhub/internal/store"
)

const sessionKey = "session"

// RequireAuth enforces bearer JWT tokens signed with HS256 and stores the
// session on the request context.
func RequireAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(sessionKey, claims.Session())
		c.Next()
	}
}

// RequireAdmin rejects requests whose session role is not admin. Must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := FromContext(c)
		if !ok || s.Role != store.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// FromContext returns the session set by RequireAuth.
func FromContext(c *gin.Context) (Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
