package rig

import "log/slog"

// Landmark is one detected keypoint. Coordinates are in the detector's
// normalized image space (2D) or metric hip-relative space (3D).
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility,omitempty"`
}

// Frame is the raw detector output for one video frame, with hands labeled
// the way the detector labeled them.
type Frame struct {
	Face      []Landmark `json:"face,omitempty"`
	Pose2D    []Landmark `json:"pose2d,omitempty"`
	Pose3D    []Landmark `json:"pose3d,omitempty"`
	LeftHand  []Landmark `json:"leftHand,omitempty"`
	RightHand []Landmark `json:"rightHand,omitempty"`
}

// Solver turns raw landmarks into joint estimates, one method per region.
// A nil estimate with a nil error means the region could not be solved.
type Solver interface {
	SolveFace(face []Landmark) (*FaceEstimate, error)
	SolvePose(pose3D, pose2D []Landmark) (*PoseEstimate, error)
	SolveHand(hand []Landmark, side Side) (*HandEstimate, error)
}

// HandAssignment decides which detector hand feeds which avatar side.
type HandAssignment int

const (
	// HandsSwapped feeds the detector's right hand to the avatar's left side.
	// Selfie-view detectors report handedness mirrored.
	HandsSwapped HandAssignment = iota

	// HandsAsLabeled trusts the detector's labels.
	HandsAsLabeled
)

// String returns a human-readable policy name.
func (h HandAssignment) String() string {
	switch h {
	case HandsSwapped:
		return "swapped"
	case HandsAsLabeled:
		return "as-labeled"
	default:
		return "unknown"
	}
}

// Assign returns the landmark sets for the avatar's left and right hands.
func (h HandAssignment) Assign(labeledLeft, labeledRight []Landmark) (left, right []Landmark) {
	if h == HandsAsLabeled {
		return labeledLeft, labeledRight
	}
	return labeledRight, labeledLeft
}

// Solve runs solver over every region present in frame and assembles the
// bundle. Regions without landmarks, and regions the solver fails on, are
// left nil.
func Solve(solver Solver, frame Frame, hands HandAssignment, logger *slog.Logger) EstimateBundle {
	if logger == nil {
		logger = slog.Default()
	}
	var b EstimateBundle

	if len(frame.Face) > 0 {
		face, err := solver.SolveFace(frame.Face)
		if err != nil {
			logger.Debug("face solve failed", "error", err)
			face = nil
		}
		b.Face = face
	}

	if len(frame.Pose2D) > 0 && len(frame.Pose3D) > 0 {
		pose, err := solver.SolvePose(frame.Pose3D, frame.Pose2D)
		if err != nil {
			logger.Debug("pose solve failed", "error", err)
			pose = nil
		}
		b.Pose = pose
	}

	left, right := hands.Assign(frame.LeftHand, frame.RightHand)
	for _, side := range Sides {
		lm := left
		if side == Right {
			lm = right
		}
		if len(lm) == 0 {
			continue
		}
		hand, err := solver.SolveHand(lm, side)
		if err != nil {
			logger.Debug("hand solve failed", "side", side, "error", err)
			hand = nil
		}
		if side == Left {
			b.LeftHand = hand
		} else {
			b.RightHand = hand
		}
	}

	return b
}
