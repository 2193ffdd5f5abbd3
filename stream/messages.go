package stream

import (
	"encoding/json"
	"fmt"

	"github.com/0x5844/rigid2d/engine"
	"github.com/0x5844/rigid2d/physics"
)

const (
	MessageTypeHello = "hello" // Sent once per connection
	MessageTypeFrame = "frame" // One simulation step
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeInfo  = "info"
)

// HelloMessage describes the simulation to a new client and carries the
// latest frame so it can draw immediately.
type HelloMessage struct {
	Type    string       `json:"type"`
	Version string       `json:"version"`
	FPS     int          `json:"fps"`
	Bounds  physics.AABB `json:"bounds"`
	Frame   FrameMessage `json:"frame"`
}

type FrameMessage struct {
	Type       string              `json:"type"`
	Step       int64               `json:"step"`
	Time       float64             `json:"time"`
	Bodies     []engine.BodyState  `json:"bodies"`
	Collisions []physics.Collision `json:"collisions,omitempty"`
	AtRest     bool                `json:"at_rest,omitempty"`
}

type PingMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
}

type PongMessage struct {
	Type       string  `json:"type"`
	ClientTime float64 `json:"client_time"`
	ServerTime int64   `json:"server_time"`
}

type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewFrameMessage(s engine.Snapshot) FrameMessage {
	return FrameMessage{
		Type:       MessageTypeFrame,
		Step:       s.Step,
		Time:       s.Time,
		Bodies:     s.Bodies,
		Collisions: s.Collisions,
		AtRest:     s.AtRest,
	}
}

func NewInfoMessage(message string) InfoMessage {
	return InfoMessage{Type: MessageTypeInfo, Message: message}
}

// ParseMessage decodes a client message. Only pings are accepted.
func ParseMessage(data []byte) (any, error) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	switch base.Type {
	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ping message: %w", err)
		}
		return &msg, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", base.Type)
	}
}
