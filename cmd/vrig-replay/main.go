// vrig-replay: stream a recorded session to a running vrigd
// Reads a JSONL recording of estimate bundles or protocol messages and sends
// it over the solver websocket at a fixed frame rate.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/go-vrig/internal/httpc"
	"github.com/teslashibe/go-vrig/internal/log"
	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/session"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

func main() {
	url := flag.String("url", "ws://localhost:8090/ws/solver", "vrigd solver websocket URL")
	file := flag.String("file", "", "JSONL recording to replay (required)")
	avatar := flag.String("avatar", "", "Avatar manifest JSON sent before the first frame")
	fps := flag.Float64("fps", 30, "Frames per second")
	loop := flag.Bool("loop", false, "Replay the recording until interrupted")
	stats := flag.Bool("stats", false, "Print daemon session stats after the replay")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	if *file == "" || *fps <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	frames, err := readRecording(*file)
	if err != nil {
		log.Error("read recording", "file", *file, "error", err)
		os.Exit(1)
	}
	if *avatar != "" {
		msg, err := readAvatar(*avatar)
		if err != nil {
			log.Error("read avatar", "file", *avatar, "error", err)
			os.Exit(1)
		}
		frames = append([]*protocol.Message{msg}, frames...)
	}

	fmt.Printf("🎞️  Replaying %d messages from %s at %.0f fps\n", len(frames), *file, *fps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n👋 Stopping replay...")
		cancel()
	}()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, *url, nil)
	if err != nil {
		log.Error("dial", "url", *url, "error", err)
		os.Exit(1)
	}
	defer ws.Close()

	var poses, rejected atomic.Uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		drain(ws, &poses, &rejected)
	}()

	start := time.Now()
	sent, err := replay(ctx, ws, frames, *fps, *loop)
	if err != nil {
		log.Warn("replay stopped", "error", err)
	}

	// Give the daemon a moment to answer the last frames
	ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}

	fmt.Printf("✅ Sent %d messages in %s: %d poses, %d rejected\n",
		sent, time.Since(start).Round(time.Millisecond), poses.Load(), rejected.Load())

	if *stats {
		printStats(*url)
	}
}

// printStats reports the daemon-wide counters from the REST API
func printStats(wsURL string) {
	statsURL, err := httpc.APIURL(wsURL, "/api/sessions/stats")
	if err != nil {
		log.Warn("stats url", "error", err)
		return
	}

	var st session.Stats
	if err := httpc.GetJSON(context.Background(), httpc.Client, statsURL, &st); err != nil {
		log.Warn("fetch stats", "error", err)
		return
	}
	fmt.Printf("📊 Daemon: %d sessions, %d frames processed, %d rejected, %d parse errors\n",
		st.SessionCount, st.FramesProcessed, st.FramesRejected, st.ParseErrors)
}

func readRecording(path string) ([]*protocol.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return loadFrames(f)
}

func readAvatar(path string) (*protocol.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m skeleton.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return protocol.NewAvatarMessage(m)
}

// replay sends frames on a ticker until they run out or ctx is cancelled
func replay(ctx context.Context, ws *websocket.Conn, frames []*protocol.Message, fps float64, loop bool) (int, error) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	sent := 0
	for {
		for _, msg := range frames {
			select {
			case <-ctx.Done():
				return sent, nil
			case <-ticker.C:
			}

			// Restamp so latency is measured against the replay, not the recording
			msg.Timestamp = time.Now().UnixMilli()
			data, err := msg.Bytes()
			if err != nil {
				return sent, err
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return sent, err
			}
			sent++
		}
		if !loop {
			return sent, nil
		}
	}
}

// drain reads daemon replies until the connection closes
func drain(ws *websocket.Conn, poses, rejected *atomic.Uint64) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Debug("unparseable reply", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypePose:
			poses.Add(1)
			if pose, err := msg.GetPoseData(); err == nil {
				log.Debug("pose",
					"seq", pose.Seq,
					"applied", pose.Report.Applied,
					"skipped", pose.Report.Skipped,
					"missing", pose.Report.Missing)
			}
		case protocol.TypeError:
			rejected.Add(1)
			if e, err := msg.GetErrorData(); err == nil {
				log.Warn("daemon rejected message", "type", e.Type, "reason", e.Message)
			}
		case protocol.TypePong:
			if pong, err := msg.GetPongData(); err == nil {
				log.Info("pong", "id", pong.ID, "latency_ms", pong.LatencyMs)
			}
		}
	}
}
