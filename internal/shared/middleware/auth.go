package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

const contextUserKey = "current_user"

// RequireUser resolves the session cookies and aborts with 401 when no
// identity is present. The resolved user lands in the gin context for
// handlers to pick up via CurrentUser.
func RequireUser(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolver.Resolve(c)
		if user == nil {
			response.Unauthorized(c, "로그인이 필요합니다.")
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// OptionalUser resolves the session if present but never aborts.
// Used by endpoints that respond differently for logged-in users.
func OptionalUser(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolver.Resolve(c); user != nil {
			c.Set(contextUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the identity stored by RequireUser/OptionalUser.
func CurrentUser(c *gin.Context) (*identity.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*identity.User)
	return user, ok
}
