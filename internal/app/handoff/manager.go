/*
Package handoff pushes transfer events to agents listening on a room.

A Manager owns one Room per room name that has (or recently had) subscribers.
Each Room runs a single goroutine that owns its subscriber set; each subscriber
is a Client with a read pump (heartbeats only) and a write pump.
*/
package handoff

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"warmtransfer/internal/pkg/logx"
)

// DefaultIdleTimeout is how long a Room without subscribers stays alive.
const DefaultIdleTimeout = 5 * time.Minute

// Manager tracks the active rooms.
type Manager struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	closed bool

	idleTimeout time.Duration

	// wg waits for every Room.Run goroutine during Shutdown.
	wg sync.WaitGroup

	logger zerolog.Logger
}

// NewManager returns a Manager. A non-positive idleTimeout selects DefaultIdleTimeout.
func NewManager(idleTimeout time.Duration) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	return &Manager{
		rooms:       make(map[string]*Room),
		idleTimeout: idleTimeout,
		logger:      logx.Component("handoff"),
	}
}

// Room returns the running Room for name, starting one if needed.
// It returns nil after Shutdown.
func (m *Manager) Room(name string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	if room, ok := m.rooms[name]; ok && !room.isDone() {
		return room
	}

	room := newRoom(name, m.idleTimeout, m.removeRoom)
	m.rooms[name] = room

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		room.Run()
	}()

	m.logger.Info().Str("room", name).Msg("Handoff room started")
	return room
}

// Publish broadcasts a message to the subscribers of room.
// It returns false when nobody is listening.
func (m *Manager) Publish(room string, typ MessageType, payload any) bool {
	m.mu.Lock()
	r, ok := m.rooms[room]
	m.mu.Unlock()

	if !ok || r.isDone() || r.SubscriberCount() == 0 {
		return false
	}

	msg, err := NewMessage(typ, room, payload)
	if err != nil {
		m.logger.Error().Err(err).Str("room", room).Msg("Failed to build handoff message")
		return false
	}

	return r.Broadcast(msg)
}

// Subscribers returns the subscriber count for room.
func (m *Manager) Subscribers(room string) int {
	m.mu.Lock()
	r, ok := m.rooms[room]
	m.mu.Unlock()

	if !ok {
		return 0
	}
	return r.SubscriberCount()
}

// removeRoom is called by a Room when its Run loop exits.
func (m *Manager) removeRoom(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.rooms[r.Name]; ok && current == r {
		delete(m.rooms, r.Name)
		m.logger.Info().Str("room", r.Name).Msg("Handoff room removed")
	}
}

// Shutdown stops every room, closing all subscriber connections, and waits for them.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}

	m.wg.Wait()
	m.logger.Info().Int("rooms", len(rooms)).Msg("Handoff manager shutdown complete")
}
