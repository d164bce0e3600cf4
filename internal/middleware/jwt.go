package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uniattend/attendance-backend/internal/model"
	"github.com/uniattend/attendance-backend/internal/response"
	"github.com/uniattend/attendance-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"

	// SelfAlias in a path parameter stands for the caller's own EUID.
	SelfAlias = "me"
)

// TokenValidator validates access tokens.
type TokenValidator interface {
	ValidateAccess(token string) (*service.Claims, error)
}

// Policy describes who may call a route. An empty Role admits any role.
// SelfParam names a path parameter that must equal the caller's subject.
type Policy struct {
	Role      model.Role
	SelfParam string
}

// Common policies.
var (
	AnyUser       = Policy{}
	Student       = Policy{Role: model.RoleStudent}
	Professor     = Policy{Role: model.RoleProfessor}
	Self          = Policy{SelfParam: "euid"}
	StudentSelf   = Policy{Role: model.RoleStudent, SelfParam: "euid"}
	ProfessorSelf = Policy{Role: model.RoleProfessor, SelfParam: "euid"}
)

// Authorize validates the access token from the Authorization header (or the
// ?token= query parameter, for WebSocket upgrades) and enforces policy.
// Token problems abort with 401; role or subject mismatches abort with 403.
// A SelfParam value of "me" is rewritten to the caller's subject.
func Authorize(tokens TokenValidator, policy Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractToken(c)
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := tokens.ValidateAccess(tokenStr)
		if err != nil {
			code := response.ErrTokenInvalid
			if errors.Is(err, service.ErrTokenExpired) {
				code = response.ErrTokenExpired
			}
			response.AbortFail(c, http.StatusUnauthorized, code)
			return
		}

		if policy.Role != "" && claims.Role != policy.Role {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		if policy.SelfParam != "" && !resolveSelf(c, policy.SelfParam, claims.Subject) {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireSubject checks that euid, typically taken from a request body,
// belongs to the caller. On mismatch it aborts with 403 and returns false.
func RequireSubject(c *gin.Context, euid string) bool {
	claims := GetClaims(c)
	if claims == nil {
		response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return false
	}
	if euid != claims.Subject {
		response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
		return false
	}
	return true
}

func resolveSelf(c *gin.Context, param, subject string) bool {
	for i := range c.Params {
		if c.Params[i].Key != param {
			continue
		}
		if c.Params[i].Value == SelfAlias {
			c.Params[i].Value = subject
		}
		return c.Params[i].Value == subject
	}
	return false
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Browsers cannot set headers on WebSocket upgrades.
	return c.Query("token")
}
