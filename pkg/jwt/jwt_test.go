package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewManager("secret-1")

	raw, err := m.GenerateSessionToken("kakao_12345", "kakao", "김철수", "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.VerifySessionToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "kakao_12345", claims.UserID)
	assert.Equal(t, "kakao", claims.LoginType)
	assert.Equal(t, "김철수", claims.Name)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	raw, err := NewManager("secret-1").GenerateSessionToken("kakao_12345", "kakao", "", "")
	require.NoError(t, err)

	_, err = NewManager("secret-2").VerifySessionToken(raw)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("secret-1")

	_, err := m.VerifySessionToken("not-a-token")
	assert.Error(t, err)

	_, err = m.VerifySessionToken("")
	assert.Error(t, err)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	// alg=none with an empty signature must never verify.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0." +
		"eyJ1c2VyX2lkIjoia2FrYW9fMTIzNDUifQ."

	_, err := NewManager("secret-1").VerifySessionToken(unsigned)
	assert.Error(t, err)
}
