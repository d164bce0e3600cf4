package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/repository"
)

// Access token validation errors.
var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// TokenType is the "type" claim distinguishing access from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Type TokenType  `json:"type"`
	Role model.Role `json:"role,omitempty"` // Access only
}

type refreshTokenStore interface {
	Create(ctx context.Context, t *model.RefreshToken) error
	Rotate(ctx context.Context, token string, issue repository.IssueFunc) error
	Revoke(ctx context.Context, token string) error
}

// TokenService issues, validates, rotates and revokes JWT token pairs.
// Only refresh tokens are persisted.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      refreshTokenStore
	now        func() time.Time
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config, store refreshTokenStore) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		store:      store,
		now:        time.Now,
	}
}

// IssuePair signs a new access/refresh pair and persists the refresh token.
func (s *TokenService) IssuePair(ctx context.Context, subject string, role model.Role) (*model.TokenPair, error) {
	access, err := s.signAccess(subject, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signRefresh(subject)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return newTokenPair(access, refresh.Token), nil
}

// ValidateAccess verifies an access token and returns its claims.
func (s *TokenService) ValidateAccess(tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess || claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Rotate exchanges a refresh token for a new pair. Each refresh token can be
// rotated at most once; replays fail with ErrInvalidRefreshToken.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil || claims.Type != TokenTypeRefresh || claims.Subject == "" {
		return nil, ErrInvalidRefreshToken
	}

	var access, refresh string
	err = s.store.Rotate(ctx, refreshToken, func(euid string, role model.Role) (*model.RefreshToken, error) {
		if euid != claims.Subject {
			return nil, ErrInvalidRefreshToken
		}
		a, err := s.signAccess(euid, role)
		if err != nil {
			return nil, err
		}
		r, err := s.signRefresh(euid)
		if err != nil {
			return nil, err
		}
		access, refresh = a, r.Token
		return r, nil
	})
	if errors.Is(err, repository.ErrTokenNotActive) || errors.Is(err, ErrInvalidRefreshToken) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	return newTokenPair(access, refresh), nil
}

// Revoke invalidates a refresh token. It is idempotent.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.store.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *TokenService) signAccess(subject string, role model.Role) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
		Type: TokenTypeAccess,
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) signRefresh(subject string) (*model.RefreshToken, error) {
	now := s.now()
	expires := now.Add(s.refreshTTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Type: TokenTypeRefresh,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &model.RefreshToken{Token: signed, EUID: subject, ExpiresAt: expires}, nil
}

func (s *TokenService) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func newTokenPair(access, refresh string) *model.TokenPair {
	return &model.TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}
