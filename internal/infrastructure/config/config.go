package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Gemini      GeminiConfig    `mapstructure:"gemini"`
	Runware     RunwareConfig   `mapstructure:"runware"`
	AI          AIConfig        `mapstructure:"ai"`
	Cache       CacheConfig     `mapstructure:"cache"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	CORS        CORSConfig      `mapstructure:"cors"`
	Client      ClientConfig    `mapstructure:"client"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig holds application metadata.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GeminiConfig holds the text/JSON generation provider settings.
type GeminiConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	BaseURL   string        `mapstructure:"base_url"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RunwareConfig holds the image generation provider settings.
type RunwareConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AIConfig bounds concurrent provider calls.
type AIConfig struct {
	EnableCache bool `mapstructure:"enable_cache"`
	Workers     int  `mapstructure:"workers"`
}

// CacheConfig holds response-cache settings. RedisAddr empty means the
// in-memory store is used.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// RateLimitConfig holds per-endpoint fixed-window request caps.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Window          time.Duration `mapstructure:"window"`
	GenerateRecipes int           `mapstructure:"generate_recipes"`
	ParsePantry     int           `mapstructure:"parse_pantry"`
	AskStep         int           `mapstructure:"ask_step"`
	Thumbnail       int           `mapstructure:"thumbnail"`
}

// CORSConfig holds the origin allow-list. Empty list enables the
// permissive development matcher.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	NativeScheme   string   `mapstructure:"native_scheme"`
}

// ClientConfig holds settings for the client-side request pipeline.
type ClientConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	AnonKey    string        `mapstructure:"anon_key"`
	AppVersion string        `mapstructure:"app_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryWait  time.Duration `mapstructure:"retry_wait"`
}

// ImageConfig caps inbound image payloads.
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// LoadConfig loads configuration from .env and environment variables.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Running without a .env file is fine in production.
		_ = err
	}

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	viper.BindEnv("gemini.model", "GEMINI_MODEL")
	viper.BindEnv("runware.api_key", "RUNWARE_API_KEY")
	viper.BindEnv("runware.model", "RUNWARE_MODEL")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("cache.redis_addr", "REDIS_ADDR")
	viper.BindEnv("cache.redis_password", "REDIS_PASSWORD")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("cors.allowed_origins", "ALLOWED_ORIGINS")
	viper.BindEnv("client.base_url", "CLIENT_BASE_URL")
	viper.BindEnv("client.anon_key", "CLIENT_ANON_KEY")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Logger is not initialized yet at this point.
	fmt.Println("Loading configuration",
		"gemini_api_key:", maskAPIKey(viper.GetString("gemini.api_key")),
		"gemini_model:", viper.GetString("gemini.model"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS is a comma-separated string in the environment.
	if len(config.CORS.AllowedOrigins) == 1 && strings.Contains(config.CORS.AllowedOrigins[0], ",") {
		parts := strings.Split(config.CORS.AllowedOrigins[0], ",")
		config.CORS.AllowedOrigins = config.CORS.AllowedOrigins[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				config.CORS.AllowedOrigins = append(config.CORS.AllowedOrigins, p)
			}
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey keeps only the first and last 4 characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "pantry-chef")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("gemini.max_tokens", 8192)
	viper.SetDefault("gemini.timeout", "60s")

	viper.SetDefault("runware.model", "runware:100@1")
	viper.SetDefault("runware.base_url", "https://api.runware.ai/v1")
	viper.SetDefault("runware.timeout", "45s")

	viper.SetDefault("ai.enable_cache", true)
	viper.SetDefault("ai.workers", 5)

	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")
	viper.SetDefault("cache.redis_db", 0)

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.generate_recipes", 10)
	viper.SetDefault("rate_limit.parse_pantry", 20)
	viper.SetDefault("rate_limit.ask_step", 30)
	viper.SetDefault("rate_limit.thumbnail", 30)

	viper.SetDefault("cors.native_scheme", "pantrychef://")

	viper.SetDefault("client.base_url", "http://localhost:8080")
	viper.SetDefault("client.app_version", "1.0.0")
	viper.SetDefault("client.timeout", "120s")
	viper.SetDefault("client.max_retries", 3)
	viper.SetDefault("client.retry_wait", "1s")

	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB

	viper.SetDefault("dedup_window", "1s")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.AI.Workers <= 0 {
		return fmt.Errorf("invalid ai workers")
	}

	if config.RateLimit.Enabled && config.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid rate limit window")
	}

	if config.Client.MaxRetries < 0 {
		return fmt.Errorf("invalid client max retries")
	}

	return nil
}
