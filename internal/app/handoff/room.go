package handoff

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"warmtransfer/internal/pkg/logx"
)

const broadcastBuffer = 64

// Room fans messages out to the subscribers of one media room.
// The clients map is written only by the Run goroutine.
type Room struct {
	Name string

	clients map[string]*Client

	broadcast  chan Message
	register   chan *Client
	unregister chan *Client

	stopChan chan struct{}
	stopOnce sync.Once

	// done is closed when Run returns.
	done chan struct{}

	idleTimeout time.Duration
	onClose     func(*Room)

	mu    sync.RWMutex
	count int

	logger zerolog.Logger
}

func newRoom(name string, idleTimeout time.Duration, onClose func(*Room)) *Room {
	return &Room{
		Name:        name,
		clients:     make(map[string]*Client),
		broadcast:   make(chan Message, broadcastBuffer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
		onClose:     onClose,
		logger:      logx.Logger().With().Str("component", "handoff").Str("room", name).Logger(),
	}
}

// Stop makes Run return, closing every subscriber.
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *Room) isDone() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// SubscriberCount returns the number of connected subscribers.
func (r *Room) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}

// Register adds c to the room. It returns false if the room has already stopped.
func (r *Room) Register(c *Client) bool {
	select {
	case r.register <- c:
		return true
	case <-r.done:
		return false
	}
}

// Broadcast queues msg for every subscriber. It returns false if the message was dropped.
func (r *Room) Broadcast(msg Message) bool {
	select {
	case r.broadcast <- msg:
		return true
	case <-r.done:
		return false
	default:
		r.logger.Warn().Str("message_id", msg.ID).Msg("Broadcast queue full, dropping message")
		return false
	}
}

func (r *Room) unregisterClient(c *Client) {
	select {
	case r.unregister <- c:
	case <-r.done:
	}
}

// Run owns the subscriber set until the room is stopped or stays empty for idleTimeout.
func (r *Room) Run() {
	idle := time.NewTimer(r.idleTimeout)

	defer func() {
		idle.Stop()

		for id, c := range r.clients {
			close(c.send)
			delete(r.clients, id)
		}
		r.setCount(0)

		close(r.done)

		if r.onClose != nil {
			r.onClose(r)
		}
		r.logger.Info().Msg("Handoff room stopped")
	}()

	for {
		select {
		case c := <-r.register:
			if existing, ok := r.clients[c.identity]; ok {
				r.logger.Info().Str("identity", c.identity).Msg("Replacing existing subscriber connection")
				close(existing.send)
			}
			r.clients[c.identity] = c
			r.setCount(len(r.clients))

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}

			r.logger.Info().Str("identity", c.identity).Int("subscribers", len(r.clients)).Msg("Subscriber joined")

		case c := <-r.unregister:
			if current, ok := r.clients[c.identity]; ok && current == c {
				delete(r.clients, c.identity)
				close(c.send)
				r.setCount(len(r.clients))
				r.logger.Info().Str("identity", c.identity).Int("subscribers", len(r.clients)).Msg("Subscriber left")
			}

			if len(r.clients) == 0 {
				idle.Reset(r.idleTimeout)
			}

		case msg := <-r.broadcast:
			raw, err := json.Marshal(msg)
			if err != nil {
				r.logger.Error().Err(err).Str("message_id", msg.ID).Msg("Error marshaling handoff message")
				continue
			}

			for id, c := range r.clients {
				select {
				case c.send <- raw:
				default:
					r.logger.Warn().Str("identity", id).Msg("Subscriber too slow, disconnecting")
					delete(r.clients, id)
					close(c.send)
				}
			}
			r.setCount(len(r.clients))

			if len(r.clients) == 0 {
				idle.Reset(r.idleTimeout)
			}

		case <-idle.C:
			if len(r.clients) == 0 {
				r.logger.Info().Dur("idle_timeout", r.idleTimeout).Msg("Handoff room idle, shutting down")
				return
			}

		case <-r.stopChan:
			return
		}
	}
}

func (r *Room) setCount(n int) {
	r.mu.Lock()
	r.count = n
	r.mu.Unlock()
}
