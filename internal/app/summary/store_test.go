package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory is the default", func(t *testing.T) {
		s, err := Open(ctx, Config{TTL: time.Hour})
		require.NoError(t, err)
		defer s.Close()
		require.Equal(t, KindMemory, s.Kind())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Open(ctx, Config{Kind: "etcd"})
		require.Error(t, err)
	})

	t.Run("postgres requires a DSN", func(t *testing.T) {
		_, err := Open(ctx, Config{Kind: KindPostgres})
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("redis requires a URL", func(t *testing.T) {
		_, err := Open(ctx, Config{Kind: KindRedis})
		require.ErrorContains(t, err, "REDIS_URL")
	})

	t.Run("redis rejects a malformed URL", func(t *testing.T) {
		_, err := Open(ctx, Config{Kind: KindRedis, RedisURL: "http://not-redis"})
		require.Error(t, err)
	})

	t.Run("redis fails fast when unreachable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		_, err := Open(ctx, Config{Kind: KindRedis, RedisURL: "redis://127.0.0.1:1/0"})
		require.ErrorContains(t, err, "ping")
	})
}
