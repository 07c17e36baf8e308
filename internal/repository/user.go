package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/sumire/overflow/internal/domain"
)

const pgUniqueViolation = "23505"

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, provider, provider_id, username, email, avatar_url, role, reputation, answer_count, created_at, updated_at`

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindByProviderID retrieves a user by their OAuth provider and provider ID.
func (r *UserRepository) FindByProviderID(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_id = $2`, provider, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by provider %s/%s: %w", provider, providerID, err)
	}
	return &user, nil
}

// Upsert creates a new user or updates an existing one based on
// provider + provider_id. When the desired username is already taken
// by another account, a numeric suffix is appended and the insert is
// retried.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) (*domain.User, error) {
	base := user.Username
	for attempt := 0; attempt < 5; attempt++ {
		var result domain.User
		err := r.db.QueryRowxContext(ctx,
			`INSERT INTO users (provider, provider_id, username, email, avatar_url, role)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (provider, provider_id)
			 DO UPDATE SET email = EXCLUDED.email,
			               avatar_url = EXCLUDED.avatar_url,
			               updated_at = NOW()
			 RETURNING `+userColumns,
			user.Provider, user.ProviderID, user.Username, user.Email, user.AvatarURL, domain.RoleUser,
		).StructScan(&result)
		if err == nil {
			return &result, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "users_username_key" {
			user.Username = fmt.Sprintf("%s%d", base, attempt+2)
			continue
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return nil, fmt.Errorf("upsert user: %w: username %q is taken", domain.ErrConflict, base)
}

// EnsureSystemUser creates (once) and returns the reserved identity
// that authors AI-generated answers.
func (r *UserRepository) EnsureSystemUser(ctx context.Context, username string) (*domain.User, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (provider, provider_id, username, email, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (provider, provider_id) DO NOTHING`,
		domain.AuthProviderSystem, "gemini", username, "ai@system.local", domain.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("ensure system user: %w", err)
	}
	return r.FindByProviderID(ctx, domain.AuthProviderSystem, "gemini")
}
