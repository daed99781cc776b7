package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryGate is the single-process fallback used when no Redis is
// configured.
type MemoryGate struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

func NewMemoryGate() *MemoryGate {
	return &MemoryGate{until: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGate) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.until[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.until[key] = now.Add(ttl)

	// drop expired keys so the map does not grow without bound
	for k, exp := range g.until {
		if !now.Before(exp) {
			delete(g.until, k)
		}
	}
	return true, nil
}
