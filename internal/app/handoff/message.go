package handoff

import (
	"encoding/json"
	"time"

	"warmtransfer/internal/pkg/randx"
)

// MessageType identifies a server-to-subscriber message.
type MessageType string

const (
	// TypeInit is sent once on connect with the room's current summary, if any.
	TypeInit MessageType = "INIT"

	// TypeTransfer is broadcast after every completed transfer in the room.
	TypeTransfer MessageType = "TRANSFER"
)

// Message is the envelope written to subscribers.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Room      string          `json:"room"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// InitPayload is the body of a TypeInit message.
type InitPayload struct {
	Identity string `json:"identity"`
	Summary  string `json:"summary,omitempty"`
}

// NewMessage marshals payload into a new envelope.
func NewMessage(typ MessageType, room string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		ID:        randx.ClipID(),
		Type:      typ,
		Room:      room,
		Timestamp: time.Now().UnixMilli(),
		Payload:   raw,
	}, nil
}
