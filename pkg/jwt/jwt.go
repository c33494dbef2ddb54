package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session_token cookie.
type SessionClaims struct {
	UserID    string `json:"user_id"`
	LoginType string `json:"login_type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Manager handles session token signing and verification.
type Manager struct {
	secret []byte
}

// NewManager creates new JWT manager
func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// GenerateSessionToken signs a 30-day session token. The login
// callback sets it as an HTTP-only cookie.
func (m *Manager) GenerateSessionToken(userID, loginType, name, email string) (string, error) {
	claims := SessionClaims{
		UserID:    userID,
		LoginType: loginType,
		Name:      name,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifySessionToken parses and validates a session token. Only HMAC
// signatures are accepted.
func (m *Manager) VerifySessionToken(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
