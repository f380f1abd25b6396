package results

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	result  Result
	expires time.Time
}

// MemoryStore is a process-local Store and Cache used when Redis is not configured.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	items   map[string]entry
	now     func() time.Time
	maxSize int
}

// NewMemoryStore returns a store whose entries expire after ttl. A non-positive ttl keeps
// entries until evicted by size.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		items:   make(map[string]entry),
		now:     time.Now,
		maxSize: 1000,
	}
}

func (s *MemoryStore) Save(ctx context.Context, r Result) error {
	_ = ctx
	s.put(r.ID, r)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Result, error) {
	_ = ctx
	r, ok := s.get(id)
	if !ok {
		return Result{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, key string) (Result, bool, error) {
	_ = ctx
	r, ok := s.get(key)
	return r, ok, nil
}

func (s *MemoryStore) Remember(ctx context.Context, key string, r Result) error {
	_ = ctx
	s.put(key, r)
	return nil
}

func (s *MemoryStore) put(key string, r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if len(s.items) >= s.maxSize {
		s.evictLocked(now)
	}
	var expires time.Time
	if s.ttl > 0 {
		expires = now.Add(s.ttl)
	}
	s.items[key] = entry{result: r, expires: expires}
}

func (s *MemoryStore) get(key string) (Result, bool) {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return Result{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return Result{}, false
	}
	return e.result, true
}

// evictLocked drops expired entries, then the oldest one if still full.
func (s *MemoryStore) evictLocked(now time.Time) {
	var oldestKey string
	var oldest time.Time
	for k, e := range s.items {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(s.items, k)
			continue
		}
		if oldestKey == "" || e.result.CreatedAt.Before(oldest) {
			oldestKey, oldest = k, e.result.CreatedAt
		}
	}
	if len(s.items) >= s.maxSize && oldestKey != "" {
		delete(s.items, oldestKey)
	}
}
