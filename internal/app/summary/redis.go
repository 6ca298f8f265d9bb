package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces summary keys in a shared Redis.
const redisKeyPrefix = "room-summary:"

// RedisStore keeps one JSON-encoded Entry per room key; Redis expires keys itself.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore parses url, pings the server, and returns a RedisStore.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("summary: REDIS_URL is required for the redis store")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("summary: parse redis url: %w", err)
	}

	return newRedisStoreWithClient(ctx, redis.NewClient(opt), ttl)
}

func newRedisStoreWithClient(ctx context.Context, client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("summary: redis ping: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Kind implements Store.
func (s *RedisStore) Kind() string { return KindRedis }

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}

	value, err := json.Marshal(e)
	if err != nil {
		return err
	}

	// A zero TTL stores the key without expiry.
	return s.client.Set(ctx, redisKeyPrefix+e.Room, value, s.ttl).Err()
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, room string) (Entry, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+room).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}

	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, fmt.Errorf("summary: decode redis value for room %q: %w", room, err)
	}
	return e, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
