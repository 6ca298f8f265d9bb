package summary

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(MemoryOptions{})
	defer s.Close()

	_, err := s.Get(ctx, "r1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, Entry{Room: "r1", Summary: "first", FromIdentity: "alice", ToIdentity: "bob"}))
	require.NoError(t, s.Put(ctx, Entry{Room: "r1", Summary: "second"}))

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "second", got.Summary)
	require.False(t, got.UpdatedAt.IsZero())
	require.Equal(t, 1, s.Len())
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(MemoryOptions{TTL: time.Hour, Now: clock.Now})
	defer s.Close()

	require.NoError(t, s.Put(ctx, Entry{Room: "r1", Summary: "s"}))

	clock.Advance(59 * time.Minute)
	_, err := s.Get(ctx, "r1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	_, err = s.Get(ctx, "r1")
	require.ErrorIs(t, err, ErrNotFound)

	// Still held until swept.
	require.Equal(t, 1, s.Len())
	require.Equal(t, 1, s.Sweep())
	require.Equal(t, 0, s.Len())
}

func TestMemoryStore_RewriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(MemoryOptions{TTL: time.Hour, Now: clock.Now})
	defer s.Close()

	require.NoError(t, s.Put(ctx, Entry{Room: "r1", Summary: "a"}))
	clock.Advance(50 * time.Minute)
	require.NoError(t, s.Put(ctx, Entry{Room: "r1", Summary: "b", UpdatedAt: clock.Now()}))
	clock.Advance(50 * time.Minute)

	got, err := s.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "b", got.Summary)
}

func TestMemoryStore_EvictsLeastRecentlyWritten(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(MemoryOptions{MaxEntries: 2})
	defer s.Close()

	require.NoError(t, s.Put(ctx, Entry{Room: "a", Summary: "1"}))
	require.NoError(t, s.Put(ctx, Entry{Room: "b", Summary: "2"}))
	// Rewriting "a" makes "b" the oldest.
	require.NoError(t, s.Put(ctx, Entry{Room: "a", Summary: "3"}))
	require.NoError(t, s.Put(ctx, Entry{Room: "c", Summary: "4"}))

	_, err := s.Get(ctx, "b")
	require.ErrorIs(t, err, ErrNotFound)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, "3", got.Summary)

	_, err = s.Get(ctx, "c")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
}

func TestMemoryStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(MemoryOptions{TTL: time.Hour})
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room-%d", i%5)
			_ = s.Put(ctx, Entry{Room: room, Summary: fmt.Sprintf("s-%d", i)})
			_, _ = s.Get(ctx, room)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 5, s.Len())
	for i := 0; i < 5; i++ {
		_, err := s.Get(ctx, fmt.Sprintf("room-%d", i))
		require.NoError(t, err)
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore(MemoryOptions{TTL: time.Minute})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}
