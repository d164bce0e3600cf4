package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniattend/attendance-backend/internal/model"
)

// ErrUserExists is returned when an EUID is already registered.
var ErrUserExists = errors.New("user already exists")

// UserRepository handles user account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByEUID retrieves a user by EUID.
func (r *UserRepository) GetByEUID(ctx context.Context, euid string) (*model.UserAccount, error) {
	u := &model.UserAccount{}
	err := r.pool.QueryRow(ctx,
		`SELECT euid, role, password_hash, created_at FROM users WHERE euid = $1`, euid,
	).Scan(&u.EUID, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.UserAccount) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (euid, role, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		u.EUID, u.Role, u.PasswordHash,
	).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrUserExists
	}
	return err
}

// UpdatePassword replaces a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, euid, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE euid = $1`, euid, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
