package identity

import "github.com/gin-gonic/gin"

// User is the resolved identity of the current request. The concrete
// login mechanism (Kakao cookie, Google cookie, signed session token)
// stays inside the resolver; everything downstream only sees this.
type User struct {
	UserID      string `json:"userId"`
	LoginType   string `json:"loginType"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// Resolver yields the current user from an inbound request,
// or nil when the request is unauthenticated.
type Resolver interface {
	Resolve(c *gin.Context) *User
}

const (
	LoginTypeKakao  = "kakao"
	LoginTypeGoogle = "google"

	// DefaultDisplayName is shown when the provider profile carries no name.
	DefaultDisplayName = "사용자"
)
