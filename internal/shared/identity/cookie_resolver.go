package identity

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/dlwnstjrzz/autobomber-website/pkg/jwt"
	"github.com/dlwnstjrzz/autobomber-website/pkg/logger"
)

// Cookie names set by the login flow. kakao_session and firebase_user
// are legacy JSON cookies written by the provider callbacks;
// session_token is the signed replacement.
const (
	CookieSessionToken = "session_token"
	CookieKakaoSession = "kakao_session"
	CookieFirebaseUser = "firebase_user"
)

// CookieResolver reads the session cookies and produces a stable userId
// with the provider prefix (kakao_<id> / google_<uid>).
type CookieResolver struct {
	tokens *jwt.Manager
}

func NewCookieResolver(jwtSecret string) *CookieResolver {
	return &CookieResolver{tokens: jwt.NewManager(jwtSecret)}
}

// kakaoSession mirrors the JSON the Kakao callback stores in the cookie.
type kakaoSession struct {
	ID              json.Number `json:"id"`
	Nickname        string      `json:"nickname"`
	ProfileNickname string      `json:"profile_nickname"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
}

// firebaseUser mirrors the JSON the Google login stores in the cookie.
type firebaseUser struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Resolve tries the signed session token first, then the legacy JSON
// cookies. A malformed cookie is treated as no session.
func (r *CookieResolver) Resolve(c *gin.Context) *User {
	if user := r.resolveSessionToken(c); user != nil {
		return user
	}

	if raw, err := c.Cookie(CookieKakaoSession); err == nil && raw != "" {
		var session kakaoSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			logger.Error("쿠키 파싱 실패", err)
			return nil
		}
		if session.ID.String() == "" {
			return nil
		}

		name := session.Nickname
		if name == "" {
			name = session.ProfileNickname
		}
		if name == "" {
			name = session.Name
		}
		if name == "" {
			name = DefaultDisplayName
		}

		return &User{
			UserID:      fmt.Sprintf("kakao_%s", session.ID.String()),
			LoginType:   LoginTypeKakao,
			DisplayName: name,
			Email:       session.Email,
		}
	}

	if raw, err := c.Cookie(CookieFirebaseUser); err == nil && raw != "" {
		var user firebaseUser
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			logger.Error("쿠키 파싱 실패", err)
			return nil
		}
		if user.UID == "" {
			return nil
		}

		name := user.DisplayName
		if name == "" {
			name = user.Email
		}
		if name == "" {
			name = DefaultDisplayName
		}

		return &User{
			UserID:      fmt.Sprintf("google_%s", user.UID),
			LoginType:   LoginTypeGoogle,
			DisplayName: name,
			Email:       user.Email,
		}
	}

	return nil
}

// resolveSessionToken verifies the HS256 session_token cookie.
func (r *CookieResolver) resolveSessionToken(c *gin.Context) *User {
	raw, err := c.Cookie(CookieSessionToken)
	if err != nil || raw == "" {
		return nil
	}

	claims, err := r.tokens.VerifySessionToken(raw)
	if err != nil || claims.UserID == "" {
		return nil
	}

	name := claims.Name
	if name == "" {
		name = DefaultDisplayName
	}

	return &User{
		UserID:      claims.UserID,
		LoginType:   claims.LoginType,
		DisplayName: name,
		Email:       claims.Email,
	}
}
