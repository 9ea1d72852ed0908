// Package protocol defines the WebSocket message types exchanged between
// solvers, the rig daemon and viewers.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Solver → Daemon messages
	TypeAvatar    MessageType = "avatar"    // Avatar loaded: bones and blendshapes
	TypeEstimate  MessageType = "estimate"  // Solved per-frame estimate bundle
	TypeLandmarks MessageType = "landmarks" // Raw detector landmarks, solved server-side

	// Daemon → Solver/Viewer messages
	TypePose  MessageType = "pose"  // Retargeted avatar pose
	TypeError MessageType = "error" // Rejected message

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

var (
	// ErrMissingData is returned when a message that requires a payload has none.
	ErrMissingData = errors.New("message has no data")

	// ErrUnknownType is returned for message types this daemon does not handle.
	ErrUnknownType = errors.New("unknown message type")
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if len(m.Data) == 0 {
		return ErrMissingData
	}
	if err := json.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("parse %s data: %w", m.Type, err)
	}
	return nil
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: %w", ErrUnknownType)
	}
	return &msg, nil
}

// =============================================================================
// Solver → Daemon Message Types
// =============================================================================

// AvatarData announces the avatar a session drives. Sending it again
// replaces the avatar and resets the session's smoothing state.
type AvatarData = skeleton.Manifest

// EstimateData carries one solved frame
type EstimateData struct {
	Seq    uint64             `json:"seq,omitempty"`
	Bundle rig.EstimateBundle `json:"bundle"`
}

// LandmarksData carries one raw detector frame
type LandmarksData struct {
	Seq   uint64    `json:"seq,omitempty"`
	Frame rig.Frame `json:"frame"`
}

// =============================================================================
// Daemon → Client Message Types
// =============================================================================

// PoseData is the retargeted pose of one session after a frame
type PoseData struct {
	SessionID string            `json:"session_id"`
	Seq       uint64            `json:"seq,omitempty"`
	Report    rig.FrameReport   `json:"report"`
	Pose      skeleton.Snapshot `json:"pose"`
}

// ErrorData describes why a message was rejected
type ErrorData struct {
	Type    MessageType `json:"type,omitempty"` // type of the rejected message
	Message string      `json:"message"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
