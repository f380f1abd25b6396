package results

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	resultKeyPrefix = "resume:result:"
	cacheKeyPrefix  = "resume:gencache:"
)

// RedisStore keeps results in Redis as JSON with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient opens a client and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (s *RedisStore) Save(ctx context.Context, r Result) error {
	return s.set(ctx, resultKeyPrefix+r.ID, r)
}

func (s *RedisStore) Get(ctx context.Context, id string) (Result, error) {
	r, ok, err := s.get(ctx, resultKeyPrefix+id)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ErrNotFound
	}
	return r, nil
}

func (s *RedisStore) Lookup(ctx context.Context, key string) (Result, bool, error) {
	return s.get(ctx, cacheKeyPrefix+key)
}

func (s *RedisStore) Remember(ctx context.Context, key string, r Result) error {
	return s.set(ctx, cacheKeyPrefix+key, r)
}

func (s *RedisStore) set(ctx context.Context, key string, r Result) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisStore) get(ctx context.Context, key string) (Result, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, false, err
	}
	return r, true, nil
}
