// Package hub fans retargeted poses out to viewer websockets
// using the channel-based broadcast pattern.
package hub

// MessageType indicates the websocket frame type
type MessageType int

const (
	// JSONMessage is a JSON-encoded text frame
	JSONMessage MessageType = iota
	// BinaryMessage is a raw binary frame
	BinaryMessage
)

// Message is one frame queued for viewers
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
