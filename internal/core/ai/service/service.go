package service

import (
	"context"
	"fmt"

	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/infrastructure/config"
)

// Service fronts the text provider with a response cache and a bounded
// concurrency gate so a burst of handler invocations cannot fan out into
// unbounded provider calls.
type Service struct {
	config *config.Config
	text   provider.TextProvider
	cache  cache.Store
	sem    chan struct{}
}

// NewService creates the AI service.
func NewService(cfg *config.Config, text provider.TextProvider, cacheStore cache.Store) (*Service, error) {
	if text == nil {
		return nil, fmt.Errorf("text provider is required")
	}

	workers := cfg.AI.Workers
	if workers <= 0 {
		workers = 4
	}

	return &Service{
		config: cfg,
		text:   text,
		cache:  cacheStore,
		sem:    make(chan struct{}, workers),
	}, nil
}

// GenerateJSON produces schema-constrained JSON, serving repeats from
// cache. Identical prompt+schema pairs hit the same cache slot.
func (s *Service) GenerateJSON(ctx context.Context, systemInstruction, prompt string, schema provider.Schema) (string, error) {
	cacheKey := fmt.Sprintf("json:%s:%s", systemInstruction, prompt)

	if s.config.AI.EnableCache && s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			return val, nil
		}
	}

	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	content, err := s.text.GenerateJSON(ctx, systemInstruction, prompt, schema)
	if err != nil {
		return "", err
	}

	if s.config.AI.EnableCache && s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, content)
	}

	return content, nil
}

// GenerateJSONFromImage produces schema-constrained JSON from a prompt and
// an image payload. The cache key hashes the image alongside the prompt so
// a changed photo never resurfaces a stale answer.
func (s *Service) GenerateJSONFromImage(ctx context.Context, systemInstruction, prompt, imageData string, schema provider.Schema) (string, error) {
	cacheKey := fmt.Sprintf("image:%s:%s:%s", systemInstruction, prompt, imageData)

	if s.config.AI.EnableCache && s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			return val, nil
		}
	}

	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	content, err := s.text.GenerateJSONFromImage(ctx, systemInstruction, prompt, imageData, schema)
	if err != nil {
		return "", err
	}

	if s.config.AI.EnableCache && s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, content)
	}

	return content, nil
}

// GenerateText produces a freeform answer, serving repeats from cache.
func (s *Service) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	cacheKey := fmt.Sprintf("text:%s:%s", systemInstruction, prompt)

	if s.config.AI.EnableCache && s.cache != nil {
		if val, err := s.cache.Get(ctx, cacheKey); err == nil && val != "" {
			return val, nil
		}
	}

	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.release()

	content, err := s.text.GenerateText(ctx, systemInstruction, prompt)
	if err != nil {
		return "", err
	}

	if s.config.AI.EnableCache && s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, content)
	}

	return content, nil
}

func (s *Service) acquire(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) release() {
	<-s.sem
}
