package auth_test

import (
	"testing"
	"time"

	"planner/internal/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

var testSecret = []byte("test-secret-key")

func TestGenerateAndParseToken(t *testing.T) {
	token, err := auth.GenerateToken("42", testSecret, time.Hour)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	subject, err := auth.ParseToken(token, testSecret)
	assert.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := auth.ParseToken("invalid-token", testSecret)

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken("42", []byte("other"), time.Hour)

	_, err := auth.ParseToken(token, testSecret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	token, _ := auth.GenerateToken("42", testSecret, -time.Hour)

	_, err := auth.ParseToken(token, testSecret)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)

	_, err := auth.ParseToken(token, testSecret)
	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestInspect(t *testing.T) {
	token, _ := auth.GenerateToken("7", []byte("unknown-to-client"), time.Hour)

	claims, err := auth.Inspect(token)
	assert.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	if assert.NotNil(t, claims.ExpiresAt) {
		assert.False(t, claims.Expired(time.Now()))
		assert.True(t, claims.Expired(time.Now().Add(2*time.Hour)))
	}
}

func TestInspect_OpaqueToken(t *testing.T) {
	_, err := auth.Inspect("not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrNotJWT)
}

func TestClaims_NoExpiryNeverExpires(t *testing.T) {
	assert.False(t, auth.Claims{Subject: "1"}.Expired(time.Now()))
}
