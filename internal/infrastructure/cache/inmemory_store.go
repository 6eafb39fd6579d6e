package cache

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = 5 * time.Minute

type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// InMemoryStore implements Store with maps guarded by a mutex.
// Suitable for single-instance deployments and tests.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counterEntry
	events   map[string]time.Time
	now      func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore starts a background goroutine that drops expired entries.
// Call Close to stop it.
func NewInMemoryStore() *InMemoryStore {
	return newInMemoryStore(time.Now, defaultCleanupInterval)
}

func newInMemoryStore(now func() time.Time, cleanupInterval time.Duration) *InMemoryStore {
	s := &InMemoryStore{
		counters: make(map[string]*counterEntry),
		events:   make(map[string]time.Time),
		now:      now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop(cleanupInterval)
	return s
}

func (s *InMemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.counters[rateLimitPrefix+key]
	if !ok || !now.Before(e.expiresAt) {
		e = &counterEntry{expiresAt: now.Add(window)}
		s.counters[rateLimitPrefix+key] = e
	}
	e.count++
	return e.count, e.expiresAt.Sub(now), nil
}

func (s *InMemoryStore) MarkProcessed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.events[eventPrefix+id]; ok && now.Before(expiresAt) {
		return false, nil
	}
	s.events[eventPrefix+id] = now.Add(ttl)
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, e := range s.counters {
		if !now.Before(e.expiresAt) {
			delete(s.counters, key)
		}
	}
	for id, expiresAt := range s.events {
		if !now.Before(expiresAt) {
			delete(s.events, id)
		}
	}
}

// Size returns the number of live entries.
func (s *InMemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters) + len(s.events)
}

var _ Store = (*InMemoryStore)(nil)
