// Package protocol defines the JSON wire contract between the table server
// and its clients: a typed envelope, the payload of every message type and
// the closed vocabulary of rejection reasons.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp. A nil data
// produces a message without payload.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	msg := &Message{
		Type:      messageType,
		Timestamp: time.Now(),
	}
	if data == nil {
		return msg, nil
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", messageType, err)
	}
	msg.Data = dataBytes
	return msg, nil
}

// Decode unmarshals the payload into v. An absent or null payload leaves v
// untouched.
func (m *Message) Decode(v any) error {
	data := bytes.TrimSpace(m.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", m.Type, err)
	}
	return nil
}

// Encode returns the JSON form of the message.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage decodes an envelope read off the wire.
func ParseMessage(raw []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("parse message: missing type")
	}
	return &msg, nil
}
