package summary

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"warmtransfer/internal/pkg/logx"
)

const (
	// DefaultMaxEntries caps the memory backend when no limit is configured.
	DefaultMaxEntries = 10000

	// sweepInterval is how often the janitor drops expired entries.
	sweepInterval = time.Minute
)

// MemoryOptions tunes a MemoryStore.
type MemoryOptions struct {
	TTL        time.Duration
	MaxEntries int

	// Now overrides the clock in tests.
	Now func() time.Time
}

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore keeps summaries in process memory.
// When full, the least recently written room is evicted.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*list.Element
	order *list.List // front = least recently written

	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger zerolog.Logger
}

// NewMemoryStore creates a MemoryStore and starts its expiry janitor.
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &MemoryStore{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		now:        opts.Now,
		stop:       make(chan struct{}),
		logger:     logx.Component("summary-memory"),
	}

	if s.ttl > 0 {
		s.wg.Add(1)
		go s.runJanitor()
	}

	return s
}

// Kind implements Store.
func (s *MemoryStore) Kind() string { return KindMemory }

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, e Entry) error {
	now := s.now()
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = now
	}

	item := &memoryItem{entry: e}
	if s.ttl > 0 {
		item.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[e.Room]; ok {
		el.Value = item
		s.order.MoveToBack(el)
		return nil
	}

	for s.order.Len() >= s.maxEntries {
		oldest := s.order.Front()
		evicted := s.order.Remove(oldest).(*memoryItem)
		delete(s.items, evicted.entry.Room)
		s.logger.Debug().Str("room", evicted.entry.Room).Msg("Evicted summary to stay under capacity")
	}

	s.items[e.Room] = s.order.PushBack(item)
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, room string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	el, ok := s.items[room]
	if !ok {
		return Entry{}, ErrNotFound
	}

	item := el.Value.(*memoryItem)
	if s.expired(item, s.now()) {
		return Entry{}, ErrNotFound
	}

	return item.entry, nil
}

// Len returns the number of stored entries, expired ones included until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}

// Sweep removes expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		item := el.Value.(*memoryItem)
		if s.expired(item, now) {
			s.order.Remove(el)
			delete(s.items, item.entry.Room)
			removed++
		}
		el = next
	}
	return removed
}

// Close stops the janitor. The store stays readable.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) expired(item *memoryItem, now time.Time) bool {
	return !item.expiresAt.IsZero() && !now.Before(item.expiresAt)
}

func (s *MemoryStore) runJanitor() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info().Int("removed", removed).Int("remaining", s.Len()).Msg("Expired summaries removed")
			}
		}
	}
}
