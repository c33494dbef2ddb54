package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/internal/shared/identity"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/middleware"
	"github.com/dlwnstjrzz/autobomber-website/internal/shared/response"
)

// AuthHandler exposes the session surface. Login itself happens on the
// web frontend (Kakao/Firebase); the API only reads and clears the
// resulting cookies.
type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me - GET /api/auth/user
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.OK(c, gin.H{"user": nil})
		return
	}

	response.OK(c, gin.H{
		"user": gin.H{
			"userId":    user.UserID,
			"loginType": user.LoginType,
			"name":      user.DisplayName,
			"email":     user.Email,
		},
	})
}

// Logout - POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, name := range []string{
		identity.CookieSessionToken,
		identity.CookieKakaoSession,
		identity.CookieFirebaseUser,
	} {
		c.SetCookie(name, "", -1, "/", "", false, true)
	}

	response.OK(c, gin.H{"message": "로그아웃되었습니다."})
}
