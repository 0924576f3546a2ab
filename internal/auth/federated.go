package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/focusmate-ai/focus-service/internal/config"
)

var errKeyNotFound = errors.New("no signing key matches token kid")

// FederatedVerifier validates externally issued tokens against the
// issuer's published key set. Keys are cached by kid with a TTL so
// rotation is picked up without hammering the endpoint.
type FederatedVerifier struct {
	cfg    config.FederatedConfig
	keys   *gocache.Cache
	client *http.Client
}

// NewFederatedVerifier builds a verifier; nil when no JWKS URL is configured.
func NewFederatedVerifier(cfg config.FederatedConfig) *FederatedVerifier {
	if cfg.JWKSURL == "" {
		return nil
	}
	ttl := cfg.KeyCacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FederatedVerifier{
		cfg:    cfg,
		keys:   gocache.New(ttl, time.Minute),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FederatedClaims carries the subject and email asserted by the issuer.
type FederatedClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type jwksDocument struct {
	Keys []jwkEntry `json:"keys"`
}

type jwkEntry struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Verify checks signature, issuer, audience, and expiry. The returned
// error carries the underlying reason for logging only; it must never be
// echoed verbatim to the client.
func (v *FederatedVerifier) Verify(ctx context.Context, tokenStr string) (*FederatedClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(v.cfg.Issuer),
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &FederatedClaims{},
		func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			if kid == "" {
				return nil, errors.New("token header missing kid")
			}
			return v.keyForKID(ctx, kid)
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*FederatedClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid federated token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("federated token missing subject")
	}
	return claims, nil
}

func (v *FederatedVerifier) keyForKID(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if cached, ok := v.keys.Get(kid); ok {
		return cached.(*rsa.PublicKey), nil
	}

	if err := v.refreshKeys(ctx); err != nil {
		return nil, err
	}

	if cached, ok := v.keys.Get(kid); ok {
		return cached.(*rsa.PublicKey), nil
	}
	return nil, errKeyNotFound
}

func (v *FederatedVerifier) refreshKeys(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read jwks: %w", err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	for _, entry := range doc.Keys {
		if entry.Kty != "RSA" || entry.Kid == "" {
			continue
		}
		key, err := rsaKeyFromJWK(entry)
		if err != nil {
			continue
		}
		v.keys.SetDefault(entry.Kid, key)
	}
	return nil
}

func rsaKeyFromJWK(entry jwkEntry) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(entry.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(entry.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e <= 0 {
		return nil, errors.New("invalid exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
