package middleware

import (
	"net/http"
	"strconv"
	"time"

	"pantry-chef/internal/core/security"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimit enforces a per-identity fixed-window cap on one route. The
// identity key is derived from the request (unverified bearer segment or
// client-info header); it is a coarse abuse deterrent, not a security
// boundary. Denials answer 429 with a Retry-After hint; allowed requests
// carry X-RateLimit-Remaining / X-RateLimit-Reset.
func RateLimit(limiter security.RateLimiter, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := security.IdentityKey(c.Request)

		result, err := limiter.Allow(c.Request.Context(), key, maxRequests, window)
		if err != nil {
			// A broken limiter store should degrade open, not take the
			// endpoint down.
			common.LogError("rate limit check failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			common.LogWarn("rate limit exceeded",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)

			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": common.ErrRateLimitExceeded.Message,
				"code":  common.ErrCodeRateLimitExceeded,
			})
			return
		}

		c.Next()
	}
}
