package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/response"
)

type authenticator interface {
	Authenticate(ctx context.Context, euid, password string) (*model.TokenPair, error)
	FaceLogin(ctx context.Context, euid, photo string) (*model.TokenPair, error)
}

type tokenRotator interface {
	Rotate(ctx context.Context, refreshToken string) (*model.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type joinCodeEnroller interface {
	EnrollWithJoinCode(ctx context.Context, req model.JoinCodeEnrollRequest) (*model.TokenPair, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth     authenticator
	tokens   tokenRotator
	enroller joinCodeEnroller
	log      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth authenticator, tokens tokenRotator, enroller joinCodeEnroller, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		tokens:   tokens,
		enroller: enroller,
		log:      log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates EUID + password and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bind(c, &req) {
		return
	}

	pair, err := h.auth.Authenticate(c.Request.Context(), req.EUID, req.Password)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Refresh godoc
// POST /api/v1/auth/refresh
// Exchanges a refresh token for a new pair. The old refresh token stops working.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if !bind(c, &req) {
		return
	}

	pair, err := h.tokens.Rotate(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}

// Logout godoc
// POST /api/v1/auth/logout
// Revokes a refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if !bind(c, &req) {
		return
	}

	if err := h.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		fail(c, h.log, err)
		return
	}

	response.NoContent(c)
}

// Enroll godoc
// POST /api/v1/auth/enroll
// Enrolls a student with a class join code and reference photo, registering
// the student on first use, and returns a token pair.
func (h *AuthHandler) Enroll(c *gin.Context) {
	var req model.JoinCodeEnrollRequest
	if !bind(c, &req) {
		return
	}

	pair, err := h.enroller.EnrollWithJoinCode(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusCreated, pair)
}

// FaceLogin godoc
// POST /api/v1/auth/face-login
// Authenticates a student by photo against the stored reference image.
func (h *AuthHandler) FaceLogin(c *gin.Context) {
	var req model.FaceLoginRequest
	if !bind(c, &req) {
		return
	}

	pair, err := h.auth.FaceLogin(c.Request.Context(), req.EUID, req.Photo)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, pair)
}
