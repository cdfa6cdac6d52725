package cache

import (
	"sync"
	"testing"
	"time"
)

func TestLimiterStore_Allow(t *testing.T) {
	tests := []struct {
		name      string
		perMinute int
		requests  int
		wantAllow int
	}{
		{name: "within burst", perMinute: 5, requests: 3, wantAllow: 3},
		{name: "burst exhausted", perMinute: 5, requests: 8, wantAllow: 5},
		{name: "non-positive limit falls back to one", perMinute: 0, requests: 3, wantAllow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewLimiterStore(tt.perMinute, time.Minute)
			defer store.Close()

			allowed := 0
			for i := 0; i < tt.requests; i++ {
				if store.Allow("10.0.0.1") {
					allowed++
				}
			}
			if allowed != tt.wantAllow {
				t.Errorf("allowed %d requests, want %d", allowed, tt.wantAllow)
			}
		})
	}
}

func TestLimiterStore_KeysAreIndependent(t *testing.T) {
	store := NewLimiterStore(1, time.Minute)
	defer store.Close()

	if !store.Allow("a") {
		t.Fatal("first request for a should be allowed")
	}
	if store.Allow("a") {
		t.Error("second request for a should be limited")
	}
	if !store.Allow("b") {
		t.Error("first request for b should be allowed")
	}
	if store.Size() != 2 {
		t.Errorf("Size() = %d, want 2", store.Size())
	}
}

func TestLimiterStore_Evict(t *testing.T) {
	store := NewLimiterStore(10, time.Minute)
	defer store.Close()

	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.Allow("idle")
	now = now.Add(45 * time.Second)
	store.Allow("active")
	now = now.Add(30 * time.Second)

	if removed := store.Evict(); removed != 1 {
		t.Errorf("Evict() removed %d, want 1", removed)
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}

func TestLimiterStore_Clear(t *testing.T) {
	store := NewLimiterStore(10, time.Minute)
	defer store.Close()

	store.Allow("a")
	store.Allow("b")
	store.Clear()

	if store.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", store.Size())
	}
}

func TestLimiterStore_Concurrent(t *testing.T) {
	store := NewLimiterStore(1000, time.Minute)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Allow("shared")
		}()
	}
	wg.Wait()

	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}
