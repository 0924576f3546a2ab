package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusmate-ai/focus-service/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("user-1", "u@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("secret-a", time.Hour)
	token, _, err := tm.GenerateToken("user-1", "")
	require.NoError(t, err)

	other := auth.NewTokenManager("secret-b", time.Hour)
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsTampering(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	token, _, err := tm.GenerateToken("user-1", "")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tm.ParseToken(tampered)
	assert.Error(t, err)
}

func TestTokenExpirySurfaces(t *testing.T) {
	secret := "test-secret"
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	tm := auth.NewTokenManager(secret, time.Hour)
	_, err = tm.ParseToken(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenRejectsAlgorithmSwap(t *testing.T) {
	// a token signed with "none" must never validate
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "user-1"})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tm := auth.NewTokenManager("test-secret", time.Hour)
	_, err = tm.ParseToken(signed)
	assert.Error(t, err)
}
