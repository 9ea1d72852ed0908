package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/teslashibe/go-vrig/pkg/protocol"
	"github.com/teslashibe/go-vrig/pkg/rig"
)

// maxLine fits a full landmarks frame (face mesh plus pose and hands).
const maxLine = 4 * 1024 * 1024

// loadFrames reads a recording with one JSON value per line. A line is
// either a complete protocol message or a bare estimate bundle, which is
// wrapped as an estimate numbered by its position. Blank lines and lines
// starting with # are skipped.
func loadFrames(r io.Reader) ([]*protocol.Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		out  []*protocol.Message
		seq  uint64
		line int
	)
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		msg, err := protocol.ParseMessage(raw)
		if err == nil {
			out = append(out, msg)
			continue
		}
		if !errors.Is(err, protocol.ErrUnknownType) {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var bundle rig.EstimateBundle
		if err := json.Unmarshal(raw, &bundle); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		seq++
		msg, err = protocol.NewEstimateMessage(seq, bundle)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
