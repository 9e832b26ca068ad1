package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_GenerateAndParse(t *testing.T) {
	manager := NewJWT("test-secret")

	tokenString, err := manager.Generate("detector-1")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	subject, err := manager.Parse(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "detector-1", subject)
}

func TestJWT_Parse_WrongSecret(t *testing.T) {
	tokenString, err := NewJWT("secret-a").Generate("detector-1")
	require.NoError(t, err)

	_, err = NewJWT("secret-b").Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Parse_Garbage(t *testing.T) {
	_, err := NewJWT("test-secret").Parse("not-a-token")
	assert.Error(t, err)
}

func TestJWT_Parse_ExpiredToken(t *testing.T) {
	now := time.Now().Add(-48 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "detector-1",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	tokenString, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWT("test-secret").Parse(tokenString)
	assert.Error(t, err)
}

func TestJWT_Parse_EmptySubject(t *testing.T) {
	now := time.Now()
	anonymous := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})
	tokenString, err := anonymous.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewJWT("test-secret").Parse(tokenString)
	assert.Error(t, err)
}
