package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"pantry-chef/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// Service is a redis-backed cache for deployments where answers must be
// shared across replicas. It exposes the same Get/Set contract as Manager.
type Service struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewService creates a redis cache service and verifies connectivity.
func NewService(cfg *config.CacheConfig) (*Service, error) {
	if !cfg.Enabled {
		return &Service{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		config: cfg,
	}, nil
}

// Get returns the cached value for key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if !s.config.Enabled || s.client == nil {
		return "", fmt.Errorf("cache is disabled")
	}

	data, err := s.client.Get(ctx, s.redisKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("cache miss")
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	return data, nil
}

// Set stores value under key with the configured TTL.
func (s *Service) Set(ctx context.Context, key, value string) error {
	if !s.config.Enabled || s.client == nil {
		return nil
	}

	if err := s.client.Set(ctx, s.redisKey(key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Close releases the redis connection.
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Service) redisKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("ai:response:%s", hex.EncodeToString(hash[:]))
}
