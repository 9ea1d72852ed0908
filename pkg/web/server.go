// Package web wires the rig daemon's HTTP and websocket surface
package web

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/teslashibe/go-vrig/pkg/hub"
	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/session"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

// Server is the rig daemon's web server
type Server struct {
	app     *fiber.App
	port    string
	log     *slog.Logger
	started time.Time

	sessions *session.Hub

	// Fan-out for renderers (thread-safe)
	viewers *hub.Hub
}

// NewServer creates a server that accepts solvers through sessions and
// mirrors every retargeted pose to connected viewers. debug enables
// request logging.
func NewServer(port string, sessions *session.Hub, log *slog.Logger, debug bool) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		port:     port,
		log:      log.With("component", "web"),
		started:  time.Now(),
		sessions: sessions,
		viewers:  hub.New("viewers", log),
	}

	sessions.OnPose(s.broadcastPose)

	app := fiber.New(fiber.Config{
		AppName:               "vrig",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New())
	if debug {
		app.Use(logger.New())
	}

	app.Get("/metrics", s.handleMetrics)

	// API routes
	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/viewers", s.handleViewers)
	sessions.RegisterAPIRoutes(api)

	// Solver websockets
	sessions.RegisterRoutes(app)

	// Viewer websocket
	app.Use("/ws/viewer", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/viewer", websocket.New(s.viewers.Handler()))

	s.app = app
	return s
}

// broadcastPose forwards a session's pose to every viewer
func (s *Server) broadcastPose(sessionID string, seq uint64, report rig.FrameReport, pose skeleton.Snapshot) {
	msg, err := protocol.NewPoseMessage(sessionID, seq, report, pose)
	if err != nil {
		s.log.Warn("encode pose", "session", sessionID, "error", err)
		return
	}
	if err := s.viewers.BroadcastJSON(msg); err != nil {
		s.log.Warn("broadcast pose", "session", sessionID, "error", err)
	}
}

// Start starts the viewer hub and blocks serving HTTP
func (s *Server) Start() error {
	s.log.Info("listening", "addr", "http://localhost:"+s.port)

	go s.viewers.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.log.Error("web server error", "error", err)
		}
	}()
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Viewers returns the viewer hub for external use
func (s *Server) Viewers() *hub.Hub {
	return s.viewers
}

// Shutdown disconnects viewers and gracefully stops the web server
func (s *Server) Shutdown() error {
	s.viewers.Stop()
	return s.app.Shutdown()
}
