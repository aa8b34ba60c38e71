package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pantry-chef/internal/api/handlers/edge"
	"pantry-chef/internal/api/handlers/health"
	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/gemini"
	"pantry-chef/internal/core/ai/runware"
	"pantry-chef/internal/core/ai/service"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/security"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// Upstream generation can take well over a minute for large batches.
	timeoutDuration = 120 * time.Second
)

// SetupRouter wires middleware, services and the edge function routes.
func SetupRouter(cfg *config.Config, cacheManager *cache.Manager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.BodySizeLimit(cfg.Image.MaxSizeBytes + 1<<20))
	router.Use(timeoutMiddleware(timeoutDuration))
	if cfg.DedupWindow > 0 {
		router.Use(middleware.Deduplication(cfg))
	}

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("ai_workers", cfg.AI.Workers),
		zap.String("model", cfg.Gemini.Model),
		zap.Duration("timeout", timeoutDuration),
	)

	textProvider := gemini.NewClient(cfg)
	imageProvider := runware.NewClient(cfg)

	// Redis shares cached responses across replicas; otherwise stay on
	// the in-memory manager.
	var aiCache cache.Store = cacheManager
	if cfg.Cache.Enabled && cfg.Cache.RedisAddr != "" {
		redisCache, err := cache.NewService(&cfg.Cache)
		if err != nil {
			common.LogWarn("Redis cache unavailable, using in-memory cache", zap.Error(err))
		} else {
			aiCache = redisCache
		}
	}

	aiService, err := service.NewService(cfg, textProvider, aiCache)
	if err != nil || aiService == nil {
		common.LogError("Failed to initialize AI service", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	generationSvc := recipe.NewGenerationService(aiService)
	pantrySvc := recipe.NewPantryService(aiService)
	stepSvc := recipe.NewStepService(aiService)
	thumbnailSvc := recipe.NewThumbnailService(imageProvider)

	edgeHandler := edge.NewHandler(generationSvc, pantrySvc, stepSvc, thumbnailSvc)
	healthHandler := health.NewHandler(cfg, cacheManager)

	limiter := newRateLimiter(cfg)

	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	functions := router.Group("/functions/v1")
	{
		functions.POST("/generate-recipes",
			rateLimit(cfg, limiter, cfg.RateLimit.GenerateRecipes),
			edgeHandler.HandleGenerateRecipes)
		functions.POST("/parse-pantry",
			rateLimit(cfg, limiter, cfg.RateLimit.ParsePantry),
			edgeHandler.HandleParsePantry)
		functions.POST("/ask-step",
			rateLimit(cfg, limiter, cfg.RateLimit.AskStep),
			edgeHandler.HandleAskStep)
		functions.POST("/generate-thumbnail",
			rateLimit(cfg, limiter, cfg.RateLimit.Thumbnail),
			edgeHandler.HandleGenerateThumbnail)
	}

	common.LogInfo("Router setup complete",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window),
	)

	return router, nil
}

// newRateLimiter picks the request-count store. Redis keeps counts
// consistent across replicas; the in-memory store covers single-node
// deployments.
func newRateLimiter(cfg *config.Config) security.RateLimiter {
	if cfg.Cache.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		common.LogInfo("Using Redis rate limit store",
			zap.String("addr", cfg.Cache.RedisAddr),
		)
		return security.NewRedisLimiter(client, "ratelimit")
	}

	limiter := security.NewMemoryLimiter()
	interval := cfg.RateLimit.Window
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup()
		}
	}()
	return limiter
}

func rateLimit(cfg *config.Config, limiter security.RateLimiter, maxRequests int) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter, maxRequests, cfg.RateLimit.Window)
}

// timeoutMiddleware bounds the whole request, including upstream AI
// calls, and reports expiry as a gateway timeout.
func timeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	}
}
