// Package session serves solver websocket connections. Each connection is
// one avatar session with its own retargeter, smoothing state and skeleton.
package session

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

// PoseCallback receives every pose a session produces.
type PoseCallback func(sessionID string, seq uint64, report rig.FrameReport, pose skeleton.Snapshot)

// Hub manages websocket connections from solvers
type Hub struct {
	cfg rig.Config
	log *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	// Landmark ingest
	solver rig.Solver
	hands  rig.HandAssignment

	onPose PoseCallback

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesProcessed  atomic.Uint64
	framesRejected   atomic.Uint64
	parseErrors      atomic.Uint64
}

// NewHub creates a session hub. cfg is the retarget configuration every
// session starts from.
func NewHub(cfg rig.Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:      cfg,
		log:      logger.With("component", "sessions"),
		sessions: make(map[string]*Session),
		hands:    rig.HandsSwapped,
	}
}

// SetSolver enables the landmarks message
func (h *Hub) SetSolver(solver rig.Solver) {
	h.mu.Lock()
	h.solver = solver
	h.mu.Unlock()
}

// SetHandAssignment sets which detector hand drives which avatar side when
// solving landmarks. The default is rig.HandsSwapped.
func (h *Hub) SetHandAssignment(hands rig.HandAssignment) {
	h.mu.Lock()
	h.hands = hands
	h.mu.Unlock()
}

// OnPose sets the callback for retargeted poses
func (h *Hub) OnPose(callback PoseCallback) {
	h.mu.Lock()
	h.onPose = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/solver", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/solver", websocket.New(h.handleSolver))
	app.Get("/ws/solver/:id", websocket.New(h.handleSolver))
}

// handleSolver runs one session until the solver disconnects. Messages are
// handled in arrival order on this goroutine.
func (h *Hub) handleSolver(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.New().String()
	}

	s := newSession(id, c, h.cfg, h.log)

	h.mu.Lock()
	if _, taken := h.sessions[id]; taken {
		h.mu.Unlock()
		h.log.Warn("rejected duplicate session", "session", id)
		if msg, err := protocol.NewErrorMessage("", ErrSessionExists); err == nil {
			s.Send(msg)
		}
		return
	}
	h.sessions[id] = s
	count := len(h.sessions)
	h.mu.Unlock()

	h.log.Info("solver connected", "session", id, "sessions", count)

	defer func() {
		h.mu.Lock()
		delete(h.sessions, id)
		count := len(h.sessions)
		h.mu.Unlock()

		h.log.Info("solver disconnected", "session", id, "sessions", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.log.Debug("solver read error", "session", id, "error", err)
			return
		}

		s.touch()
		h.messagesReceived.Add(1)
		h.handleMessage(s, data)
	}
}

// handleMessage processes an incoming message from a solver
func (h *Hub) handleMessage(s *Session, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.parseErrors.Add(1)
		h.log.Warn("parse error", "session", s.ID, "error", err)
		h.sendError(s, "", err)
		return
	}

	switch msg.Type {
	case protocol.TypeAvatar:
		manifest, err := msg.GetAvatarData()
		if err != nil {
			h.sendError(s, msg.Type, err)
			return
		}
		if err := s.LoadAvatar(*manifest); err != nil {
			h.sendError(s, msg.Type, err)
		}

	case protocol.TypeEstimate:
		est, err := msg.GetEstimateData()
		if err != nil {
			h.framesRejected.Add(1)
			h.sendError(s, msg.Type, err)
			return
		}
		h.process(s, msg.Type, est.Seq, est.Bundle)

	case protocol.TypeLandmarks:
		lm, err := msg.GetLandmarksData()
		if err != nil {
			h.framesRejected.Add(1)
			h.sendError(s, msg.Type, err)
			return
		}

		h.mu.RLock()
		solver, hands := h.solver, h.hands
		h.mu.RUnlock()

		if solver == nil {
			h.framesRejected.Add(1)
			h.sendError(s, msg.Type, ErrNoSolver)
			return
		}
		h.process(s, msg.Type, lm.Seq, rig.Solve(solver, lm.Frame, hands, s.log))

	case protocol.TypePing:
		var id string
		if ping, err := msg.GetPingData(); err == nil {
			id = ping.ID
		}
		h.sendPong(s, id, msg.Timestamp)

	default:
		h.sendError(s, msg.Type, protocol.ErrUnknownType)
	}
}

// process retargets a bundle, replies with the pose and notifies OnPose
func (h *Hub) process(s *Session, kind protocol.MessageType, seq uint64, bundle rig.EstimateBundle) {
	report, pose, err := s.Process(bundle)
	if err != nil {
		h.framesRejected.Add(1)
		h.sendError(s, kind, err)
		return
	}
	h.framesProcessed.Add(1)

	h.mu.RLock()
	cb := h.onPose
	h.mu.RUnlock()
	if cb != nil {
		cb(s.ID, seq, report, pose)
	}

	msg, err := protocol.NewPoseMessage(s.ID, seq, report, pose)
	if err != nil {
		h.log.Warn("encode pose", "session", s.ID, "error", err)
		return
	}
	h.send(s, msg)
}

func (h *Hub) sendError(s *Session, rejected protocol.MessageType, cause error) {
	msg, err := protocol.NewErrorMessage(rejected, cause)
	if err != nil {
		return
	}
	h.send(s, msg)
}

func (h *Hub) sendPong(s *Session, id string, pingTS int64) {
	msg, err := protocol.NewPongMessage(id, pingTS, time.Now().UnixMilli())
	if err != nil {
		return
	}
	h.send(s, msg)
}

func (h *Hub) send(s *Session, msg *protocol.Message) {
	h.messagesSent.Add(1)
	if err := s.Send(msg); err != nil {
		h.log.Debug("send error", "session", s.ID, "error", err)
	}
}

// GetSession returns a session by ID
func (h *Hub) GetSession(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SessionCount returns the number of connected solvers
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stats contains hub statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesProcessed  uint64 `json:"frames_processed"`
	FramesRejected   uint64 `json:"frames_rejected"`
	ParseErrors      uint64 `json:"parse_errors"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		SessionCount:     h.SessionCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesProcessed:  h.framesProcessed.Load(),
		FramesRejected:   h.framesRejected.Load(),
		ParseErrors:      h.parseErrors.Load(),
	}
}

// SessionInfos returns info about all connected sessions
func (h *Hub) SessionInfos() []Info {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// RegisterAPIRoutes registers API routes for session inspection
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	sessions := api.Group("/sessions")

	// List connected sessions
	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": h.SessionInfos(),
			"count":    h.SessionCount(),
		})
	})

	// Get hub stats
	sessions.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})

	// Current pose of one session
	sessions.Get("/:id/pose", func(c *fiber.Ctx) error {
		s, err := h.GetSession(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		pose, err := s.Pose()
		if err != nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(pose)
	})
}
