package health

import (
	"net/http"
	"runtime"
	"time"

	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// Handler serves the health, readiness and liveness probes.
type Handler struct {
	cfg   *config.Config
	cache *cache.Manager
}

func NewHandler(cfg *config.Config, cacheManager *cache.Manager) *Handler {
	return &Handler{cfg: cfg, cache: cacheManager}
}

// HealthCheck reports process status, runtime stats and cache stats.
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck reports whether the service can take traffic.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck reports whether the process is alive.
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
