package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantry-chef/internal/core/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string, int, time.Duration) (security.Result, error) {
	return security.Result{}, errors.New("store down")
}

func newRateLimitedRouter(limiter security.RateLimiter, maxRequests int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/limited", RateLimit(limiter, maxRequests, time.Minute), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doPost(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/limited", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("denies over the cap with retry hint", func(t *testing.T) {
		r := newRateLimitedRouter(security.NewMemoryLimiter(), 2)

		assert.Equal(t, http.StatusOK, doPost(r, "abc.def.ghi").Code)
		assert.Equal(t, http.StatusOK, doPost(r, "abc.def.ghi").Code)

		denied := doPost(r, "abc.def.ghi")
		assert.Equal(t, http.StatusTooManyRequests, denied.Code)
		assert.Equal(t, "60", denied.Header().Get("Retry-After"))
		assert.Contains(t, denied.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("sets rate limit headers on success", func(t *testing.T) {
		r := newRateLimitedRouter(security.NewMemoryLimiter(), 5)

		w := doPost(r, "abc.def.ghi")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("buckets by identity", func(t *testing.T) {
		r := newRateLimitedRouter(security.NewMemoryLimiter(), 1)

		assert.Equal(t, http.StatusOK, doPost(r, "user1.x.y").Code)
		assert.Equal(t, http.StatusTooManyRequests, doPost(r, "user1.x.y").Code)
		assert.Equal(t, http.StatusOK, doPost(r, "user2.x.y").Code)
	})

	t.Run("degrades open on store failure", func(t *testing.T) {
		r := newRateLimitedRouter(failingLimiter{}, 1)

		assert.Equal(t, http.StatusOK, doPost(r, "").Code)
		assert.Equal(t, http.StatusOK, doPost(r, "").Code)
	})
}
