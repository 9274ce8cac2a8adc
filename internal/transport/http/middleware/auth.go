package middleware

import (
	"net/http"

	"github.com/emeeran/prompt-saver-web-app/internal/session"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// SessionParser is the subset of session.Manager the middleware needs.
type SessionParser interface {
	Parse(value string) (int64, error)
}

// Session resolves the session cookie once per request and, when valid,
// stores the authenticated user ID in the gin context. It never aborts;
// requiring authentication is RequireAuth's job.
func Session(sessions SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(session.CookieName); err == nil {
			if userID, err := sessions.Parse(cookie); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// RequireAuth redirects unauthenticated requests to the login page.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userIDKey); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user ID resolved by Session.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
