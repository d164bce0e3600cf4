package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniattend/attendance-backend/internal/ratelimit"
	"github.com/uniattend/attendance-backend/internal/response"
)

// RateLimitByIP throttles requests per client IP with a sliding window.
// Every request counts against the budget. Store failures let the request
// through.
func RateLimitByIP(limiter *ratelimit.Limiter, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "ip_rate_limit").Logger()
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, err := limiter.Take(c.Request.Context(), ip)
		if err != nil {
			log.Error().Err(err).Str("ip", ip).Msg("Rate limit store error")
			c.Next()
			return
		}
		if !allowed {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
