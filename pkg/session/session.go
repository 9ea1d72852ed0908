package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

// Session is one solver connection driving one avatar.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time

	cfg rig.Config
	log *slog.Logger

	writeMu sync.Mutex

	// Guards everything below
	mu         sync.Mutex
	lastSeen   time.Time
	avatar     string
	skeleton   *skeleton.Skeleton
	retargeter *rig.Retargeter
	frames     uint64
	lastReport rig.FrameReport
}

func newSession(id string, conn *websocket.Conn, cfg rig.Config, logger *slog.Logger) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Conn:      conn,
		Connected: now,
		cfg:       cfg,
		log:       logger.With("session", id),
		lastSeen:  now,
	}
}

// Send writes a message to the solver
func (s *Session) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// LoadAvatar replaces the session's avatar. Smoothing state and the
// blendshape name cache start fresh, since both depend on the avatar.
func (s *Session) LoadAvatar(m skeleton.Manifest) error {
	sk := skeleton.New(m)

	cfg := s.cfg
	cfg.Logger = s.log
	rt, err := rig.NewRetargeter(cfg, rig.NewState(), sk, m.Catalog())
	if err != nil {
		return fmt.Errorf("load avatar %q: %w", m.Name, err)
	}

	s.mu.Lock()
	s.avatar = m.Name
	s.skeleton = sk
	s.retargeter = rt
	s.frames = 0
	s.lastReport = rig.FrameReport{}
	s.mu.Unlock()

	s.log.Info("avatar loaded",
		"avatar", m.Name,
		"bones", len(m.Bones),
		"blendshapes", len(m.Blendshapes))
	return nil
}

// Process retargets one estimate bundle onto the avatar and returns the
// resulting pose.
func (s *Session) Process(bundle rig.EstimateBundle) (rig.FrameReport, skeleton.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retargeter == nil {
		return rig.FrameReport{}, skeleton.Snapshot{}, ErrNoAvatar
	}

	report := s.retargeter.ProcessFrame(bundle)
	snap := s.skeleton.Commit()
	s.frames++
	s.lastReport = report
	return report, snap, nil
}

// Pose returns the current pose without advancing the frame counter.
func (s *Session) Pose() (skeleton.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.skeleton == nil {
		return skeleton.Snapshot{}, ErrNoAvatar
	}
	return s.skeleton.Snapshot(), nil
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// Info contains info about a connected session
type Info struct {
	ID         string          `json:"id"`
	Avatar     string          `json:"avatar,omitempty"`
	Frames     uint64          `json:"frames"`
	LastReport rig.FrameReport `json:"last_report"`
	Connected  time.Time       `json:"connected"`
	LastSeen   time.Time       `json:"last_seen"`
}

// Info returns a point-in-time description of the session
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:         s.ID,
		Avatar:     s.avatar,
		Frames:     s.frames,
		LastReport: s.lastReport,
		Connected:  s.Connected,
		LastSeen:   s.lastSeen,
	}
}
