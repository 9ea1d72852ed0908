package web

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Health is the body of /api/health
type Health struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
	Viewers  int    `json:"viewers"`
}

// handleHealth reports liveness and connection counts
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(Health{
		Status:   "ok",
		Uptime:   time.Since(s.started).Round(time.Second).String(),
		Sessions: s.sessions.SessionCount(),
		Viewers:  s.viewers.ClientCount(),
	})
}

// handleViewers returns viewer hub counters
func (s *Server) handleViewers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"count":   s.viewers.ClientCount(),
		"dropped": s.viewers.Dropped(),
		"running": s.viewers.IsRunning(),
	})
}

// handleMetrics exposes counters in Prometheus text format
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	stats := s.sessions.GetStats()
	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
	return c.SendString(fmt.Sprintf(`# HELP vrig_sessions Connected solver sessions
# TYPE vrig_sessions gauge
vrig_sessions %d

# HELP vrig_viewers Connected viewers
# TYPE vrig_viewers gauge
vrig_viewers %d

# HELP vrig_messages_received Total solver messages received
# TYPE vrig_messages_received counter
vrig_messages_received %d

# HELP vrig_messages_sent Total messages sent to solvers
# TYPE vrig_messages_sent counter
vrig_messages_sent %d

# HELP vrig_frames_processed Total frames retargeted
# TYPE vrig_frames_processed counter
vrig_frames_processed %d

# HELP vrig_frames_rejected Total frames rejected
# TYPE vrig_frames_rejected counter
vrig_frames_rejected %d

# HELP vrig_viewer_drops Total viewer frames or viewers dropped for backpressure
# TYPE vrig_viewer_drops counter
vrig_viewer_drops %d
`, stats.SessionCount, s.viewers.ClientCount(), stats.MessagesReceived, stats.MessagesSent,
		stats.FramesProcessed, stats.FramesRejected, s.viewers.Dropped()))
}
