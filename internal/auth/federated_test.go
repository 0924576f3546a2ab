package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/auth"
	"github.com/focusmate-ai/focus-service/internal/config"
)

const testKID = "test-key-1"

func newJWKSServer(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
}

func signFederated(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestFederatedVerifyAgainstKeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSServer(t, &key.PublicKey)
	defer server.Close()

	cfg := config.FederatedConfig{
		JWKSURL:     server.URL,
		Issuer:      "https://issuer.example",
		KeyCacheTTL: time.Minute,
	}
	verifier := auth.NewFederatedVerifier(cfg)
	require.NotNil(t, verifier)

	token := signFederated(t, key, jwt.MapClaims{
		"iss":   "https://issuer.example",
		"sub":   "ext-user-42",
		"email": "ext@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ext-user-42", claims.Subject)
	assert.Equal(t, "ext@example.com", claims.Email)
}

func TestFederatedVerifyRejectsWrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSServer(t, &key.PublicKey)
	defer server.Close()

	verifier := auth.NewFederatedVerifier(config.FederatedConfig{
		JWKSURL: server.URL,
		Issuer:  "https://issuer.example",
	})

	token := signFederated(t, key, jwt.MapClaims{
		"iss": "https://evil.example",
		"sub": "ext-user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestFederatedVerifyRejectsUnknownKID(t *testing.T) {
	keyA, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keyB, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// the key set publishes A, the token is signed with B
	server := newJWKSServer(t, &keyA.PublicKey)
	defer server.Close()

	verifier := auth.NewFederatedVerifier(config.FederatedConfig{
		JWKSURL: server.URL,
		Issuer:  "https://issuer.example",
	})

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": "https://issuer.example",
		"sub": "ext-user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "unknown-kid"
	signed, err := token.SignedString(keyB)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), signed)
	assert.Error(t, err)
}

func TestGateRoutesMarkedTokenToFederated(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := newJWKSServer(t, &key.PublicKey)
	defer server.Close()

	cfg := config.FederatedConfig{
		JWKSURL:      server.URL,
		Issuer:       "https://issuer.example",
		MarkerPrefix: "st_",
	}
	verifier := auth.NewFederatedVerifier(cfg)
	tokens := auth.NewTokenManager("local-secret", time.Hour)
	users := &fakeUserChecker{existing: map[string]bool{}}
	gate := auth.NewGate(tokens, verifier, users, cfg, zap.NewNop())

	token := signFederated(t, key, jwt.MapClaims{
		"iss":   "https://issuer.example",
		"sub":   "ext-user-42",
		"email": "ext@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	// federated principals skip the local existence check entirely
	principal, err := gate.Authenticate(context.Background(), "Bearer st_"+token)
	require.NoError(t, err)
	assert.Equal(t, "ext-user-42", principal.ID)
	assert.Equal(t, auth.SchemeFederated, principal.Scheme)
}
