package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps the buckets in process memory. Idle buckets are dropped after a few minutes.
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	done     chan struct{}
	once     sync.Once
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(rps, burst int) *MemoryStore {
	s := &MemoryStore{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		done:     make(chan struct{}),
	}
	go s.cleanup()
	return s
}

func (s *MemoryStore) limiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (s *MemoryStore) Allow(_ context.Context, key string) (bool, error) {
	return s.limiter(key).Allow(), nil
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			for key, v := range s.visitors {
				if time.Since(v.lastSeen) > visitorTTL {
					delete(s.visitors, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.done) })
}
