package auth

import (
	"context"
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/config"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// Scheme identifies which credential path authenticated the caller.
type Scheme string

const (
	SchemeLocal     Scheme = "local"
	SchemeFederated Scheme = "federated"
)

// Principal represents the authenticated caller for one request.
type Principal struct {
	ID     string
	Email  string
	Scheme Scheme
}

// UserChecker confirms a locally issued token still maps to an existing user.
type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Gate validates bearer credentials and resolves the principal. Local
// tokens are verified against the server secret plus one existence check;
// federated tokens are verified against the issuer's published key set
// and trusted without a local lookup.
type Gate struct {
	tokens    *TokenManager
	federated *FederatedVerifier
	users     UserChecker
	marker    string
	logger    *zap.Logger
}

// NewGate constructs the gate. federated may be nil when no issuer is
// configured; federated-marked tokens are then rejected outright.
func NewGate(tokens *TokenManager, federated *FederatedVerifier, users UserChecker, cfg config.FederatedConfig, logger *zap.Logger) *Gate {
	return &Gate{
		tokens:    tokens,
		federated: federated,
		users:     users,
		marker:    cfg.MarkerPrefix,
		logger:    logger,
	}
}

// Authenticate resolves the Authorization header value into a Principal.
func (g *Gate) Authenticate(ctx context.Context, headerValue string) (*Principal, error) {
	if headerValue == "" {
		return nil, util.NewUnauthenticated("missing or invalid authorization header", nil)
	}

	parts := strings.SplitN(headerValue, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, util.NewUnauthenticated("missing or invalid authorization header", nil)
	}
	token := parts[1]

	// A federated marker routes to the federated path and fails closed:
	// never fall back to local verification for marked tokens.
	if g.marker != "" && strings.HasPrefix(token, g.marker) {
		return g.authenticateFederated(ctx, strings.TrimPrefix(token, g.marker))
	}
	return g.authenticateLocal(ctx, token)
}

func (g *Gate) authenticateFederated(ctx context.Context, token string) (*Principal, error) {
	if g.federated == nil {
		return nil, util.NewUnauthenticated("invalid authentication token",
			errors.New("federated token presented but no issuer configured"))
	}

	claims, err := g.federated.Verify(ctx, token)
	if err != nil {
		g.logger.Info("federated verification failed", zap.Error(err))
		return nil, util.NewUnauthenticated("invalid or expired token", err)
	}

	return &Principal{ID: claims.Subject, Email: claims.Email, Scheme: SchemeFederated}, nil
}

func (g *Gate) authenticateLocal(ctx context.Context, token string) (*Principal, error) {
	if !g.tokens.Configured() {
		return nil, util.NewConfigurationError("JWT_SECRET is not set", nil)
	}

	claims, err := g.tokens.ParseToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			g.logger.Info("session token expired", zap.Error(err))
			return nil, util.NewUnauthenticated("authentication expired, please login again", err)
		}
		g.logger.Info("session token invalid", zap.Error(err))
		return nil, util.NewUnauthenticated("invalid authentication token", err)
	}

	exists, err := g.users.Exists(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, util.NewUnauthenticated("user not found", nil)
	}

	return &Principal{ID: claims.UserID, Email: claims.Email, Scheme: SchemeLocal}, nil
}
