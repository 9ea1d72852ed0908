package main

import (
	"strings"
	"testing"

	"github.com/teslashibe/go-vrig/pkg/protocol"
)

func TestLoadFrames(t *testing.T) {
	rec := `# recorded 2026-10-01
{"type":"avatar","data":{"name":"a","blendshapes":["Blink_L"]}}

{"face":{"eye":{"l":1,"r":1}}}
{"pose":{"spine":{"x":0.1,"y":0,"z":0}}}
{"type":"ping","data":{"id":"p"}}
`
	msgs, err := loadFrames(strings.NewReader(rec))
	if err != nil {
		t.Fatalf("loadFrames: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(msgs))
	}

	want := []protocol.MessageType{protocol.TypeAvatar, protocol.TypeEstimate, protocol.TypeEstimate, protocol.TypePing}
	for i, m := range msgs {
		if m.Type != want[i] {
			t.Errorf("msgs[%d].Type = %s, want %s", i, m.Type, want[i])
		}
	}

	est, err := msgs[2].GetEstimateData()
	if err != nil {
		t.Fatalf("GetEstimateData: %v", err)
	}
	if est.Seq != 2 || est.Bundle.Pose == nil || est.Bundle.Pose.Spine.X != 0.1 {
		t.Errorf("estimate = %+v", est)
	}
	if est.Bundle.Face != nil {
		t.Error("bare pose bundle should not carry a face")
	}
}

func TestLoadFrames_BadLine(t *testing.T) {
	_, err := loadFrames(strings.NewReader("{\"face\":{}}\n{oops\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 error", err)
	}
}
