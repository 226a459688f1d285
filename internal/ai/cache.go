// # internal/ai/cache.go
package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// ResponseCache memoizes assistant replies for the lifetime of one session,
// keyed by a hash of the operation type and the exact prompt text. Guarded by
// a mutex so a parallelized caller stays safe.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*Response
}

func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]*Response)}
}

func CacheKey(operation, prompt string) string {
	sum := sha256.Sum256([]byte(operation + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *ResponseCache) Get(operation, prompt string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	resp, ok := c.entries[CacheKey(operation, prompt)]
	return resp, ok
}

func (c *ResponseCache) Put(operation, prompt string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[CacheKey(operation, prompt)] = resp
}

func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
