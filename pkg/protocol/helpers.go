package protocol

import (
	"github.com/teslashibe/go-vrig/pkg/rig"
	"github.com/teslashibe/go-vrig/pkg/skeleton"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewAvatarMessage creates an avatar announcement
func NewAvatarMessage(m skeleton.Manifest) (*Message, error) {
	return NewMessage(TypeAvatar, m)
}

// NewEstimateMessage creates an estimate message
func NewEstimateMessage(seq uint64, bundle rig.EstimateBundle) (*Message, error) {
	return NewMessage(TypeEstimate, EstimateData{Seq: seq, Bundle: bundle})
}

// NewLandmarksMessage creates a raw landmarks message
func NewLandmarksMessage(seq uint64, frame rig.Frame) (*Message, error) {
	return NewMessage(TypeLandmarks, LandmarksData{Seq: seq, Frame: frame})
}

// NewPoseMessage creates a pose message
func NewPoseMessage(sessionID string, seq uint64, report rig.FrameReport, pose skeleton.Snapshot) (*Message, error) {
	return NewMessage(TypePose, PoseData{
		SessionID: sessionID,
		Seq:       seq,
		Report:    report,
		Pose:      pose,
	})
}

// NewErrorMessage creates an error message for a rejected message type
func NewErrorMessage(rejected MessageType, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Type: rejected, Message: err.Error()})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetAvatarData extracts the avatar manifest from a message
func (m *Message) GetAvatarData() (*AvatarData, error) {
	var data AvatarData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEstimateData extracts an estimate bundle from a message
func (m *Message) GetEstimateData() (*EstimateData, error) {
	var data EstimateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetLandmarksData extracts raw landmarks from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPoseData extracts a pose from a message
func (m *Message) GetPoseData() (*PoseData, error) {
	var data PoseData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts an error from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
