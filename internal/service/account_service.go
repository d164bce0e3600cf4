package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
)

type accountStore interface {
	GetByEUID(ctx context.Context, euid string) (*model.UserAccount, error)
	Create(ctx context.Context, u *model.UserAccount) error
	UpdatePassword(ctx context.Context, euid, hash string) error
}

// ErrInvalidRole is returned when provisioning an account with an unknown role.
var ErrInvalidRole = newError(KindValidation, "INVALID_ROLE")

// AccountService provisions password accounts from operator tooling.
type AccountService struct {
	users      accountStore
	bcryptCost int
	log        zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(cfg *config.Config, users accountStore, log zerolog.Logger) *AccountService {
	return &AccountService{
		users:      users,
		bcryptCost: cfg.BcryptCost,
		log:        log.With().Str("component", "account_service").Logger(),
	}
}

// Provision creates an account, or resets the password of an existing one
// with the same role. It reports whether the account was created. A role
// never changes once the account exists.
func (s *AccountService) Provision(ctx context.Context, euid string, role model.Role, password string) (bool, error) {
	if !role.Valid() {
		return false, ErrInvalidRole
	}
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}

	err = s.users.Create(ctx, &model.UserAccount{EUID: euid, Role: role, PasswordHash: hash})
	if err == nil {
		s.log.Info().Str("euid", euid).Str("role", string(role)).Msg("Account created")
		return true, nil
	}
	if !errors.Is(err, repository.ErrUserExists) {
		return false, fmt.Errorf("create user: %w", err)
	}

	existing, err := s.users.GetByEUID(ctx, euid)
	if err != nil {
		return false, fmt.Errorf("get user: %w", err)
	}
	if existing.Role != role {
		return false, ErrRoleMismatch
	}
	if err := s.users.UpdatePassword(ctx, euid, hash); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	s.log.Info().Str("euid", euid).Msg("Account password reset")
	return false, nil
}
