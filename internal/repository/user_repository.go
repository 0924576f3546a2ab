package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/focusmate-ai/focus-service/internal/domain"
	"github.com/focusmate-ai/focus-service/internal/persistence"
)

// ErrNotFound reports an absent row; services map it to the taxonomy.
var ErrNotFound = errors.New("not found")

// ErrEmailTaken reports a duplicate registration email.
var ErrEmailTaken = errors.New("email already registered")

const uniqueViolation = "23505"

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	CreateUnverified(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, id, username, email string) (*domain.User, error)
}

type userRepository struct {
	db *persistence.Executor
}

// NewUserRepository returns an executor-backed implementation.
func NewUserRepository(db *persistence.Executor) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, username, email, password_hash, verified, created_at, updated_at"

// CreateUnverified checks for an existing email and inserts the account in
// one transaction. A concurrent insert racing past the check is caught by
// the unique constraint and reported the same way.
func (r *userRepository) CreateUnverified(ctx context.Context, user *domain.User) error {
	user.ID = uuid.NewString()

	err := r.db.Transaction(ctx, func(tx *persistence.Tx) error {
		existing, err := tx.Query(ctx, "SELECT id FROM users WHERE email = $1", []any{user.Email})
		if err != nil {
			return err
		}
		if len(existing.Rows) > 0 {
			return ErrEmailTaken
		}

		out, err := tx.Query(ctx, `
        INSERT INTO users (id, username, email, password_hash, verified, created_at, updated_at)
        VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
        RETURNING `+userColumns,
			[]any{user.ID, user.Username, user.Email, user.PasswordHash})
		if err != nil {
			return err
		}
		*user = *scanUser(out.First())
		return nil
	})

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", []any{email})
	if err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, ErrNotFound
	}
	return scanUser(out.First()), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.db.Query(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", []any{id})
	if err != nil {
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, ErrNotFound
	}
	return scanUser(out.First()), nil
}

func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	out, err := r.db.Query(ctx, "SELECT id FROM users WHERE id = $1", []any{id})
	if err != nil {
		return false, err
	}
	return len(out.Rows) > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, username, email string) (*domain.User, error) {
	out, err := r.db.Query(ctx, `
        UPDATE users SET username = $1, email = $2, updated_at = NOW()
        WHERE id = $3
        RETURNING `+userColumns,
		[]any{username, email, id})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, ErrNotFound
	}
	return scanUser(out.First()), nil
}

func scanUser(row persistence.Row) *domain.User {
	return &domain.User{
		ID:           row.String("id"),
		Username:     row.String("username"),
		Email:        row.String("email"),
		PasswordHash: row.String("password_hash"),
		Verified:     row.Bool("verified"),
		CreatedAt:    row.Time("created_at"),
		UpdatedAt:    row.Time("updated_at"),
	}
}
