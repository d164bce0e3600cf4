package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/biometric"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/ratelimit"
	"github.com/uniattend/attendance-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type userStore interface {
	GetByEUID(ctx context.Context, euid string) (*model.UserAccount, error)
}

type faceVerifier interface {
	VerifyMatch(submittedB64, referencePath string, tolerance float64) (biometric.Result, error)
}

type referencePaths interface {
	Path(euid string) string
}

// AuthService handles password and face login.
type AuthService struct {
	users     userStore
	tokens    *TokenService
	verifier  faceVerifier
	refs      referencePaths
	limiter   *ratelimit.Limiter
	tolerance float64
	dummyHash []byte
	log       zerolog.Logger
}

// NewAuthService creates a new AuthService. limiter throttles failed face
// logins per EUID.
func NewAuthService(
	cfg *config.Config,
	users userStore,
	tokens *TokenService,
	verifier faceVerifier,
	refs referencePaths,
	limiter *ratelimit.Limiter,
	log zerolog.Logger,
) *AuthService {
	// Compared against when the EUID is unknown so both failure paths cost a bcrypt check.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("unknown-user"), cfg.BcryptCost)
	return &AuthService{
		users:     users,
		tokens:    tokens,
		verifier:  verifier,
		refs:      refs,
		limiter:   limiter,
		tolerance: cfg.FaceTolerance,
		dummyHash: dummy,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// Authenticate checks an EUID and password and issues a token pair. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, euid, password string) (*model.TokenPair, error) {
	user, err := s.users.GetByEUID(ctx, euid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.tokens.IssuePair(ctx, user.EUID, user.Role)
}

// FaceLogin verifies a photo against the user's reference image and issues a
// token pair. Every attempt reserves a slot in the per-EUID budget before the
// verifier runs and gives it back on a match, so only failures stay counted.
// Once the budget is spent further attempts fail with ErrInvalidCredentials
// without running the verifier, exactly like a mismatch.
func (s *AuthService) FaceLogin(ctx context.Context, euid, photo string) (*model.TokenPair, error) {
	slot, allowed, err := s.limiter.Reserve(ctx, euid)
	if err != nil {
		return nil, fmt.Errorf("reserve face login attempt: %w", err)
	}
	if !allowed {
		s.log.Info().Str("euid", euid).Msg("Face login throttled")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEUID(ctx, euid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.release(ctx, slot, euid)
			return nil, fmt.Errorf("get user: %w", err)
		}
		s.log.Debug().Str("euid", euid).Str("reason", "unknown_user").Msg("Face login rejected")
		return nil, ErrInvalidCredentials
	}

	res, err := s.verifier.VerifyMatch(photo, s.refs.Path(euid), s.tolerance)
	if err != nil {
		s.release(ctx, slot, euid)
		return nil, fmt.Errorf("verify face: %w", err)
	}
	if !res.Matched {
		s.log.Debug().Str("euid", euid).Str("reason", string(res.Reason)).Msg("Face login rejected")
		return nil, ErrInvalidCredentials
	}

	s.release(ctx, slot, euid)
	return s.tokens.IssuePair(ctx, user.EUID, user.Role)
}

// release returns an attempt that did not fail. A lost release only costs
// the user one slot until the window slides, so it is logged, not returned.
func (s *AuthService) release(ctx context.Context, slot *ratelimit.Reservation, euid string) {
	if err := slot.Release(ctx); err != nil {
		s.log.Warn().Err(err).Str("euid", euid).Msg("Failed to release face login attempt")
	}
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// unusablePasswordHash returns a hash of a random secret nobody knows, for
// accounts that are created without a password.
func unusablePasswordHash(cost int) (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hashPassword(hex.EncodeToString(secret), cost)
}
