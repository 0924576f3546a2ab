package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/focusmate-ai/focus-service/internal/auth"
	"github.com/focusmate-ai/focus-service/internal/config"
	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/repository"
	"github.com/focusmate-ai/focus-service/pkg/util"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, users repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Register creates a new unverified account. No token is issued; the user
// must verify their email before logging in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, util.NewValidationError("name, email and password are required", nil)
	}
	if !strings.Contains(email, "@") {
		return nil, util.NewValidationError("invalid email address", nil)
	}
	if len(password) < 6 {
		return nil, util.NewValidationError("password must be at least 6 characters", nil)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUnverified(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, util.NewValidationError("User already exists with this email", nil)
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login authenticates a verified account and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", time.Time{}, util.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", time.Time{}, util.NewUnauthenticated("User not found", nil)
		}
		return nil, "", time.Time{}, err
	}
	if !user.Verified {
		return nil, "", time.Time{}, util.NewUnauthenticated("Please verify your email", nil)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, util.NewUnauthenticated("Invalid email or password", nil)
	}

	if !s.tokens.Configured() {
		return nil, "", time.Time{}, util.NewConfigurationError("server configuration error", errors.New("JWT_SECRET is not set"))
	}
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID))
	return user, token, expiresAt, nil
}
