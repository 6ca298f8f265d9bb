/*
Package summary stores the latest handoff summary per room.

Writes are last-write-wins per room. Every backend applies the same retention
policy: an entry older than its TTL is treated as absent.
*/
package summary

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the room has no unexpired summary.
var ErrNotFound = errors.New("summary: not found")

// Backend kinds accepted by Open.
const (
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindRedis    = "redis"
)

// Entry is the stored result of one transfer.
type Entry struct {
	Room         string    `json:"room"`
	Summary      string    `json:"summary"`
	FromIdentity string    `json:"from_identity,omitempty"`
	ToIdentity   string    `json:"to_identity,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is implemented by every summary backend. Implementations are safe for concurrent use.
type Store interface {
	// Put replaces the summary for e.Room.
	Put(ctx context.Context, e Entry) error

	// Get returns the latest summary for room or ErrNotFound.
	Get(ctx context.Context, room string) (Entry, error)

	// Kind names the backend for logs and health output.
	Kind() string

	// Close releases background goroutines and connections.
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Kind string

	// TTL is how long an entry stays readable after its last write. Zero disables expiry.
	TTL time.Duration

	// MaxEntries bounds the memory backend. Zero means DefaultMaxEntries.
	MaxEntries int

	DatabaseURL string
	RedisURL    string
}

// Open constructs the backend named by cfg.Kind.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemoryStore(MemoryOptions{TTL: cfg.TTL, MaxEntries: cfg.MaxEntries}), nil
	case KindPostgres:
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindRedis:
		s, err := NewRedisStore(ctx, cfg.RedisURL, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("summary: unknown store kind %q", cfg.Kind)
	}
}
