package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/response"
	"github.com/uniattend/attendance-backend/internal/service"
	"github.com/uniattend/attendance-backend/internal/validator"
)

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an API error. *service.Error values keep their code;
// anything else is logged and reported as INTERNAL_ERROR.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		response.Fail(c, statusFor(svcErr.Kind), response.ErrCode(svcErr.Code))
		return
	}

	log.Error().
		Err(err).
		Str("request_id", response.RequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// bind decodes and validates the JSON body. On failure it writes a 400 and
// returns false.
func bind(c *gin.Context, dst interface{}) bool {
	if fields := validator.Bind(c, dst); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return false
	}
	return true
}

// param returns a path parameter after checking it against a validation tag.
func param(c *gin.Context, name, tag string) (string, bool) {
	value := c.Param(name)
	if !validator.Var(value, tag) {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			name: "invalid " + name,
		})
		return "", false
	}
	return value, true
}
