package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound viewer frames; viewers only send control frames
	maxMessageSize = 4 * 1024

	// sendBuffer is how many pose frames a viewer may lag behind
	sendBuffer = 64
)

// Viewer is a single renderer websocket connection
type Viewer struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// Attach registers a new viewer connection with the hub
func (h *Hub) Attach(conn *websocket.Conn) *Viewer {
	v := &Viewer{
		hub:  h,
		conn: conn,
		send: make(chan Message, sendBuffer),
	}
	h.register <- v
	return v
}

// Handler returns a fiber websocket handler that serves viewers until they
// disconnect
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		h.Attach(c).Run()
	}
}

// Run starts the viewer's pumps and blocks until the connection closes
func (v *Viewer) Run() {
	go v.writePump()
	v.readPump()
}

// readPump drains inbound frames to detect disconnection and pongs
func (v *Viewer) readPump() {
	defer func() {
		select {
		case v.hub.unregister <- v:
		case <-v.hub.stop:
		}
		v.conn.Close()
	}()

	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		v.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump is the only goroutine that writes to the connection
func (v *Viewer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			wsType := websocket.TextMessage
			if msg.Type == BinaryMessage {
				wsType = websocket.BinaryMessage
			}
			if err := v.conn.WriteMessage(wsType, msg.Data); err != nil {
				return
			}

		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
