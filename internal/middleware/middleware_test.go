package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/ratelimit"
	"github.com/uniattend/attendance-backend/internal/response"
	"github.com/uniattend/attendance-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTokens map[string]*service.Claims

func (f fakeTokens) ValidateAccess(token string) (*service.Claims, error) {
	switch token {
	case "expired":
		return nil, service.ErrTokenExpired
	}
	claims, ok := f[token]
	if !ok {
		return nil, service.ErrTokenInvalid
	}
	return claims, nil
}

func claimsFor(euid string, role model.Role) *service.Claims {
	return &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: euid},
		Type:             service.TokenTypeAccess,
		Role:             role,
	}
}

var tokens = fakeTokens{
	"student":   claimsFor("abc1234", model.RoleStudent),
	"professor": claimsFor("prf0001", model.RoleProfessor),
}

func newRouter(path string, policy Policy) *gin.Engine {
	r := gin.New()
	r.GET(path, Authorize(tokens, policy), func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"euid": c.Param("euid"), "subject": GetClaims(c).Subject})
	})
	return r
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) response.ErrCode {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestAuthorizeTokenFailures(t *testing.T) {
	r := newRouter("/x", AnyUser)

	w := do(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, errorCode(t, w))

	w = do(r, http.MethodGet, "/x", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenInvalid, errorCode(t, w))

	w = do(r, http.MethodGet, "/x", "expired")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenExpired, errorCode(t, w))
}

func TestAuthorizeRole(t *testing.T) {
	r := newRouter("/x", Professor)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x", "professor").Code)

	w := do(r, http.MethodGet, "/x", "student")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, response.ErrForbidden, errorCode(t, w))
}

func TestAuthorizeSelf(t *testing.T) {
	r := newRouter("/students/:euid", StudentSelf)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/students/abc1234", "student").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/students/xyz9876", "student").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/students/prf0001", "professor").Code)
}

func TestAuthorizeResolvesMe(t *testing.T) {
	r := newRouter("/students/:euid", Self)

	w := do(r, http.MethodGet, "/students/me", "student")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc1234", body.Data["euid"])
}

func TestAuthorizeQueryToken(t *testing.T) {
	r := newRouter("/ws", Professor)
	w := do(r, http.MethodGet, "/ws?token=professor", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireSubject(t *testing.T) {
	r := gin.New()
	r.POST("/attendance", Authorize(tokens, Student), func(c *gin.Context) {
		if !RequireSubject(c, c.Query("euid")) {
			return
		}
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/attendance?euid=abc1234", "student").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/attendance?euid=xyz9876", "student").Code)
}

func TestRateLimitByIP(t *testing.T) {
	now := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 2, time.Minute).
		WithClock(func() time.Time { return now })

	r := gin.New()
	r.POST("/auth/login", RateLimitByIP(limiter, zerolog.Nop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login", "").Code)

	w := do(r, http.MethodPost, "/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))

	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login", "").Code)
}
