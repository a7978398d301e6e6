package cache

import (
	"sync"
	"time"
)

// Memory is an in-process PageCache. It serves deployments without a
// Redis URL configured, and the test suite.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	body    []byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (c *Memory) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.body, true
}

func (c *Memory) Set(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{body: body, expires: time.Now().Add(ttl)}
}

func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
