package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uniattend/attendance-backend/internal/database"
	"github.com/uniattend/attendance-backend/internal/model"
)

// ErrTokenNotActive is returned when a refresh token is unknown, revoked or expired.
var ErrTokenNotActive = errors.New("refresh token is not active")

// IssueFunc mints the replacement refresh token for a subject during rotation.
type IssueFunc func(euid string, role model.Role) (*model.RefreshToken, error)

// RefreshTokenRepository handles refresh token persistence.
type RefreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository creates a new RefreshTokenRepository.
func NewRefreshTokenRepository(pool *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool}
}

// Create stores a newly issued refresh token.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *model.RefreshToken) error {
	return insertRefreshToken(ctx, r.pool, t)
}

// Rotate revokes token and stores the replacement minted by issue, all in one
// transaction. The revoke only matches an active row, so when two rotations
// race on the same token the loser sees ErrTokenNotActive.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, token string, issue IssueFunc) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var euid string
		err := tx.QueryRow(ctx,
			`UPDATE refresh_tokens SET revoked = TRUE
			 WHERE token = $1 AND NOT revoked AND expires_at > now()
			 RETURNING euid`, token,
		).Scan(&euid)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenNotActive
		}
		if err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}

		var role model.Role
		err = tx.QueryRow(ctx, `SELECT role FROM users WHERE euid = $1`, euid).Scan(&role)
		if err != nil {
			return fmt.Errorf("lookup role: %w", notFound(err))
		}

		next, err := issue(euid, role)
		if err != nil {
			return err
		}
		return insertRefreshToken(ctx, tx, next)
	})
}

// Revoke marks a refresh token revoked. Revoking an unknown or already
// revoked token is not an error.
func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND NOT revoked`, token)
	return err
}

func insertRefreshToken(ctx context.Context, db DBTX, t *model.RefreshToken) error {
	return db.QueryRow(ctx,
		`INSERT INTO refresh_tokens (token, euid, expires_at, revoked) VALUES ($1, $2, $3, FALSE)
		 RETURNING created_at`,
		t.Token, t.EUID, t.ExpiresAt,
	).Scan(&t.CreatedAt)
}
