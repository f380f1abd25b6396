package auth

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// StateStore remembers issued OAuth states until the callback consumes them.
// Consume reports true at most once per state, and never after the state expired.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// MemoryStates keeps states in process. It only works when the callback lands on the
// same instance that served start.
type MemoryStates struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryStates() *MemoryStates {
	return &MemoryStates{items: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryStates) Put(_ context.Context, state string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for s, exp := range m.items {
		if now.After(exp) {
			delete(m.items, s)
		}
	}
	m.items[state] = now.Add(ttl)
	return nil
}

func (m *MemoryStates) Consume(_ context.Context, state string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.items[state]
	delete(m.items, state)
	return ok && !m.now().After(exp), nil
}

// RedisStates shares states across instances, which the Lambda deployment needs.
type RedisStates struct {
	client *redis.Client
	prefix string
}

func NewRedisStates(client *redis.Client) *RedisStates {
	return &RedisStates{client: client, prefix: "oauth_state:"}
}

func (r *RedisStates) Put(ctx context.Context, state string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+state, "1", ttl).Err()
}

func (r *RedisStates) Consume(ctx context.Context, state string) (bool, error) {
	n, err := r.client.Del(ctx, r.prefix+state).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
