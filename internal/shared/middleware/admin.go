package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/shared/authz"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

// RequireAdmin gates settlement and the referral dashboard. Must run
// after RequireUser. The response does not reveal whether the target
// resource exists.
func RequireAdmin(gate *authz.AllowList) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c, "로그인이 필요합니다.")
			c.Abort()
			return
		}

		if !gate.IsAdmin(user.Email) {
			response.Forbidden(c, "접근 권한이 없습니다.")
			c.Abort()
			return
		}

		c.Next()
	}
}
