package session

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

var testManifest = skeleton.Manifest{
	Name:        "test-avatar",
	Blendshapes: []string{"Blink_L", "aa"},
}

func faceBundle() rig.EstimateBundle {
	return rig.EstimateBundle{
		Face: &rig.FaceEstimate{
			Head: &rig.Rotation{X: 0.1, Y: 0.2, Z: 0},
			Eye:  &rig.EyeOpenness{Left: 0, Right: 0},
		},
	}
}

func startServer(t *testing.T, h *Hub, port string) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterRoutes(app)
	h.RegisterAPIRoutes(app.Group("/api"))

	go app.Listen(":" + port)
	time.Sleep(100 * time.Millisecond)
	return app
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	return ws
}

func send(t *testing.T, ws *websocket.Conn, msg *protocol.Message, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	data, _ := msg.Bytes()
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, ws *websocket.Conn) *protocol.Message {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	return msg
}

type faceSolver struct {
	hands atomic.Int32
}

func (f *faceSolver) SolveFace(face []rig.Landmark) (*rig.FaceEstimate, error) {
	return &rig.FaceEstimate{Head: &rig.Rotation{X: face[0].X}}, nil
}

func (f *faceSolver) SolvePose(pose3D, pose2D []rig.Landmark) (*rig.PoseEstimate, error) {
	return nil, nil
}

func (f *faceSolver) SolveHand(hand []rig.Landmark, side rig.Side) (*rig.HandEstimate, error) {
	f.hands.Add(1)
	return nil, errors.New("no hands today")
}

func TestNewHub(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)

	if h == nil {
		t.Fatal("NewHub returned nil")
	}
	if h.SessionCount() != 0 {
		t.Error("SessionCount should be 0 initially")
	}
	if len(h.SessionInfos()) != 0 {
		t.Error("SessionInfos should be empty initially")
	}

	stats := h.GetStats()
	if stats.MessagesReceived != 0 || stats.FramesProcessed != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)

	if _, err := h.GetSession("nonexistent"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSession_ProcessWithoutAvatar(t *testing.T) {
	s := newSession("s", nil, rig.DefaultConfig(), slog.Default())

	if _, _, err := s.Process(faceBundle()); !errors.Is(err, ErrNoAvatar) {
		t.Errorf("Process err = %v, want ErrNoAvatar", err)
	}
	if _, err := s.Pose(); !errors.Is(err, ErrNoAvatar) {
		t.Errorf("Pose err = %v, want ErrNoAvatar", err)
	}
}

func TestSession_LoadAvatarAndProcess(t *testing.T) {
	s := newSession("s", nil, rig.DefaultConfig(), slog.Default())

	if err := s.LoadAvatar(testManifest); err != nil {
		t.Fatalf("LoadAvatar: %v", err)
	}

	report, pose, err := s.Process(faceBundle())
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if report.Applied != 1 {
		t.Errorf("Applied = %d, want 1 (neck)", report.Applied)
	}
	if pose.Frame != 1 || pose.Avatar != "test-avatar" {
		t.Errorf("pose frame=%d avatar=%q", pose.Frame, pose.Avatar)
	}
	if !pose.Bones[rig.BoneNeck].Changed {
		t.Error("neck should be changed")
	}
	if pose.Bones[rig.BoneHips].Changed {
		t.Error("hips should not be changed")
	}
	if w := pose.Weights["Blink_L"]; math.Abs(w-0.3) > 1e-9 {
		t.Errorf("Blink_L = %v, want 0.3", w)
	}

	info := s.Info()
	if info.Frames != 1 || info.Avatar != "test-avatar" || info.LastReport.Applied != 1 {
		t.Errorf("info = %+v", info)
	}
}

func TestSession_ReloadResetsState(t *testing.T) {
	s := newSession("s", nil, rig.DefaultConfig(), slog.Default())
	s.LoadAvatar(testManifest)
	s.Process(faceBundle())
	s.Process(faceBundle())

	s.LoadAvatar(skeleton.Manifest{Name: "other"})

	if info := s.Info(); info.Frames != 0 || info.Avatar != "other" {
		t.Errorf("info after reload = %+v", info)
	}
	pose, err := s.Pose()
	if err != nil {
		t.Fatalf("Pose: %v", err)
	}
	if q := pose.Bones[rig.BoneNeck].Rotation; q != [4]float64{0, 0, 0, 1} {
		t.Errorf("neck after reload = %v, want identity", q)
	}
}

func TestSession_InvalidConfig(t *testing.T) {
	cfg := rig.DefaultConfig()
	cfg.EyeLerp = 0
	s := newSession("s", nil, cfg, slog.Default())

	if err := s.LoadAvatar(testManifest); !errors.Is(err, rig.ErrInvalidFactor) {
		t.Errorf("err = %v, want ErrInvalidFactor", err)
	}
}

func TestRegisterRoutes(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := fiber.New()

	// Should not panic
	h.RegisterRoutes(app)
	h.RegisterAPIRoutes(app.Group("/api"))
}

func TestWebSocketConnection(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18180")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18180/ws/solver/test-solver")
	defer ws.Close()

	time.Sleep(50 * time.Millisecond)

	if h.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", h.SessionCount())
	}
	if _, err := h.GetSession("test-solver"); err != nil {
		t.Errorf("GetSession: %v", err)
	}

	ws.Close()
	time.Sleep(100 * time.Millisecond)

	if h.SessionCount() != 0 {
		t.Errorf("SessionCount = %d, want 0 after disconnect", h.SessionCount())
	}
}

func TestGeneratedSessionID(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18181")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18181/ws/solver")
	defer ws.Close()

	time.Sleep(50 * time.Millisecond)

	infos := h.SessionInfos()
	if len(infos) != 1 {
		t.Fatalf("SessionInfos = %d, want 1", len(infos))
	}
	if _, err := uuid.Parse(infos[0].ID); err != nil {
		t.Errorf("session id %q is not a uuid: %v", infos[0].ID, err)
	}
}

func TestDuplicateSessionRejected(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18182")
	defer app.Shutdown()

	first := dial(t, "ws://localhost:18182/ws/solver/dup")
	defer first.Close()
	time.Sleep(50 * time.Millisecond)

	second := dial(t, "ws://localhost:18182/ws/solver/dup")
	defer second.Close()

	msg := read(t, second)
	if msg.Type != protocol.TypeError {
		t.Fatalf("Type = %s, want error", msg.Type)
	}
	data, _ := msg.GetErrorData()
	if data.Message != ErrSessionExists.Error() {
		t.Errorf("Message = %q", data.Message)
	}
	if h.SessionCount() != 1 {
		t.Errorf("SessionCount = %d, want 1", h.SessionCount())
	}
}

func TestEstimateBeforeAvatar(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18183")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18183/ws/solver/early")
	defer ws.Close()

	msg, err := protocol.NewEstimateMessage(1, faceBundle())
	send(t, ws, msg, err)

	resp := read(t, ws)
	if resp.Type != protocol.TypeError {
		t.Fatalf("Type = %s, want error", resp.Type)
	}
	data, _ := resp.GetErrorData()
	if data.Type != protocol.TypeEstimate || data.Message != ErrNoAvatar.Error() {
		t.Errorf("error = %+v", data)
	}
	if h.GetStats().FramesRejected != 1 {
		t.Errorf("FramesRejected = %d, want 1", h.GetStats().FramesRejected)
	}
}

func TestAvatarThenEstimate(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)

	var poses atomic.Int32
	var gotSession atomic.Value
	h.OnPose(func(sessionID string, seq uint64, report rig.FrameReport, pose skeleton.Snapshot) {
		gotSession.Store(sessionID)
		poses.Add(1)
	})

	app := startServer(t, h, "18184")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18184/ws/solver/flow")
	defer ws.Close()

	avatar, err := protocol.NewAvatarMessage(testManifest)
	send(t, ws, avatar, err)
	est, err := protocol.NewEstimateMessage(9, faceBundle())
	send(t, ws, est, err)

	resp := read(t, ws)
	if resp.Type != protocol.TypePose {
		t.Fatalf("Type = %s, want pose", resp.Type)
	}
	data, err := resp.GetPoseData()
	if err != nil {
		t.Fatalf("GetPoseData: %v", err)
	}
	if data.SessionID != "flow" || data.Seq != 9 || data.Pose.Frame != 1 {
		t.Errorf("pose = %+v", data)
	}
	if data.Report.Applied != 1 {
		t.Errorf("Applied = %d, want 1", data.Report.Applied)
	}

	if poses.Load() != 1 || gotSession.Load() != "flow" {
		t.Errorf("OnPose calls = %d, session = %v", poses.Load(), gotSession.Load())
	}
	if h.GetStats().FramesProcessed != 1 {
		t.Errorf("FramesProcessed = %d, want 1", h.GetStats().FramesProcessed)
	}
}

func TestLandmarksWithoutSolver(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18185")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18185/ws/solver/lm")
	defer ws.Close()

	msg, err := protocol.NewLandmarksMessage(1, rig.Frame{Face: []rig.Landmark{{X: 1}}})
	send(t, ws, msg, err)

	resp := read(t, ws)
	data, _ := resp.GetErrorData()
	if resp.Type != protocol.TypeError || data.Message != ErrNoSolver.Error() {
		t.Errorf("resp = %s %+v", resp.Type, data)
	}
}

func TestLandmarksWithSolver(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	solver := &faceSolver{}
	h.SetSolver(solver)
	h.SetHandAssignment(rig.HandsSwapped)

	app := startServer(t, h, "18186")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18186/ws/solver/lm")
	defer ws.Close()

	avatar, err := protocol.NewAvatarMessage(testManifest)
	send(t, ws, avatar, err)
	msg, err := protocol.NewLandmarksMessage(2, rig.Frame{
		Face:     []rig.Landmark{{X: 0.5}},
		LeftHand: []rig.Landmark{{X: 0.1}},
	})
	send(t, ws, msg, err)

	resp := read(t, ws)
	if resp.Type != protocol.TypePose {
		t.Fatalf("Type = %s, want pose", resp.Type)
	}
	data, _ := resp.GetPoseData()
	if data.Seq != 2 || !data.Pose.Bones[rig.BoneNeck].Changed {
		t.Errorf("pose = %+v", data)
	}
	if solver.hands.Load() != 1 {
		t.Errorf("SolveHand calls = %d, want 1", solver.hands.Load())
	}
}

func TestUnknownMessageType(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18187")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18187/ws/solver/unknown")
	defer ws.Close()

	ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"dance","ts":1}`))

	resp := read(t, ws)
	data, _ := resp.GetErrorData()
	if resp.Type != protocol.TypeError || data.Type != "dance" {
		t.Errorf("resp = %s %+v", resp.Type, data)
	}

	ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
	read(t, ws)
	if h.GetStats().ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", h.GetStats().ParseErrors)
	}
}

func TestPingPong(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := startServer(t, h, "18188")
	defer app.Shutdown()

	ws := dial(t, "ws://localhost:18188/ws/solver/ping-test")
	defer ws.Close()

	msg, err := protocol.NewPingMessage("p7")
	send(t, ws, msg, err)

	resp := read(t, ws)
	if resp.Type != protocol.TypePong {
		t.Fatalf("Type = %s, want pong", resp.Type)
	}
	data, _ := resp.GetPongData()
	if data.ID != "p7" {
		t.Errorf("ID = %q, want p7", data.ID)
	}

	// Bare ping without data still gets a pong
	bare, err := protocol.NewMessage(protocol.TypePing, nil)
	send(t, ws, bare, err)
	if resp := read(t, ws); resp.Type != protocol.TypePong {
		t.Errorf("Type = %s, want pong", resp.Type)
	}
}

func TestAPIListSessions(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterAPIRoutes(app.Group("/api"))

	req := httptest.NewRequest("GET", "/api/sessions/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "sessions") {
		t.Error("Response should contain 'sessions' field")
	}
}

func TestAPIStats(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterAPIRoutes(app.Group("/api"))

	req := httptest.NewRequest("GET", "/api/sessions/stats", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.SessionCount != 0 {
		t.Errorf("SessionCount = %d, want 0", stats.SessionCount)
	}
}

func TestAPIPoseNotFound(t *testing.T) {
	h := NewHub(rig.DefaultConfig(), nil)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterAPIRoutes(app.Group("/api"))

	req := httptest.NewRequest("GET", "/api/sessions/ghost/pose", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.StatusCode)
	}
}
