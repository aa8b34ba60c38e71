package client

import "sync"

// AnswerCache stores step-explanation answers keyed by recipe title,
// step text and question. Injected at construction so the orchestrator
// never depends on a concrete store.
type AnswerCache interface {
	Get(key string) (string, bool)
	Set(key string, answer string)
}

// MemoryAnswerCache is a process-local AnswerCache.
type MemoryAnswerCache struct {
	mu      sync.RWMutex
	answers map[string]string
}

func NewMemoryAnswerCache() *MemoryAnswerCache {
	return &MemoryAnswerCache{answers: make(map[string]string)}
}

func (c *MemoryAnswerCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	answer, ok := c.answers[key]
	return answer, ok
}

func (c *MemoryAnswerCache) Set(key string, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answers[key] = answer
}
