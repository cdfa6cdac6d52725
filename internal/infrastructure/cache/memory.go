package cache

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterItem is one client's token bucket with its last access time
type limiterItem struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterStore is a thread-safe in-memory store of per-key rate limiters.
// Keys that stay idle longer than the TTL are evicted.
type LimiterStore struct {
	data  map[string]*limiterItem
	mutex sync.RWMutex

	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewLimiterStore creates a store handing out limiters that allow perMinute
// requests per minute with a burst of the same size.
func NewLimiterStore(perMinute int, ttl time.Duration) *LimiterStore {
	if perMinute <= 0 {
		perMinute = 1
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	store := &LimiterStore{
		data:  make(map[string]*limiterItem),
		limit: rate.Limit(float64(perMinute) / 60),
		burst: perMinute,
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}

	// Evict idle clients every TTL
	go store.cleanupLoop()

	return store
}

// Allow reports whether the client identified by key may make a request now
func (s *LimiterStore) Allow(key string) bool {
	return s.get(key).Allow()
}

func (s *LimiterStore) get(key string) *rate.Limiter {
	now := s.now()

	s.mutex.RLock()
	item, exists := s.data[key]
	s.mutex.RUnlock()
	if exists {
		s.mutex.Lock()
		item.lastSeen = now
		s.mutex.Unlock()
		return item.limiter
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Another request may have created it meanwhile
	if item, exists := s.data[key]; exists {
		item.lastSeen = now
		return item.limiter
	}
	item = &limiterItem{
		limiter:  rate.NewLimiter(s.limit, s.burst),
		lastSeen: now,
	}
	s.data[key] = item
	return item.limiter
}

// Evict removes limiters idle for longer than the TTL and returns how many were removed
func (s *LimiterStore) Evict() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for key, item := range s.data {
		if item.lastSeen.Before(cutoff) {
			delete(s.data, key)
			removed++
		}
	}
	return removed
}

func (s *LimiterStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Evict()
		case <-s.stop:
			return
		}
	}
}

// Close stops the cleanup goroutine
func (s *LimiterStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// Size returns the number of tracked clients (for debugging/monitoring)
func (s *LimiterStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Clear removes all tracked clients
func (s *LimiterStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.data = make(map[string]*limiterItem)
}
