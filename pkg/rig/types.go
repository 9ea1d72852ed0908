// Package rig retargets solved body, face and hand estimates onto a humanoid
// avatar skeleton.
//
// Every frame the Retargeter takes one EstimateBundle, damps and converts each
// joint rotation to a quaternion, slerps it against the previous orientation
// held in State, and writes the result to a SkeletonSink. Facial blendshape
// weights and eye gaze are smoothed the same way but on scalars.
//
// Missing data never resets a bone: a target whose estimate is absent this
// frame is skipped and keeps its last value.
package rig

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation is an Euler triple in radians applied in X, Y, Z order.
type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Scale multiplies every axis by k.
func (r Rotation) Scale(k float64) Rotation {
	return Rotation{X: r.X * k, Y: r.Y * k, Z: r.Z * k}
}

// IsFinite reports whether no axis is NaN or infinite.
func (r Rotation) IsFinite() bool {
	return isFinite(r.X) && isFinite(r.Y) && isFinite(r.Z)
}

// PartialRotation is a Rotation whose axes may each be missing.
// A nil axis means "no signal this frame", never zero.
type PartialRotation struct {
	X, Y, Z *float64
}

// Full wraps a complete rotation.
func Full(r Rotation) PartialRotation {
	return PartialRotation{X: &r.X, Y: &r.Y, Z: &r.Z}
}

// FromPtr returns a full PartialRotation for r, or an empty one when r is nil.
func FromPtr(r *Rotation) PartialRotation {
	if r == nil {
		return PartialRotation{}
	}
	return Full(*r)
}

// Axis returns the value for a single axis.
func (p PartialRotation) Axis(a Axis) *float64 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	case AxisZ:
		return p.Z
	}
	return nil
}

// IsEmpty reports whether no axis is present.
func (p PartialRotation) IsEmpty() bool {
	return p.X == nil && p.Y == nil && p.Z == nil
}

// Complete returns the rotation when all three axes are present.
func (p PartialRotation) Complete() (Rotation, bool) {
	if p.X == nil || p.Y == nil || p.Z == nil {
		return Rotation{}, false
	}
	return Rotation{X: *p.X, Y: *p.Y, Z: *p.Z}, true
}

// EyeOpenness is the detector's per-eye openness, 0 closed to 1 open.
type EyeOpenness struct {
	Left  float64 `json:"l"`
	Right float64 `json:"r"`
}

// MouthShape holds the five canonical viseme weights.
type MouthShape struct {
	A float64 `json:"A"`
	I float64 `json:"I"`
	U float64 `json:"U"`
	E float64 `json:"E"`
	O float64 `json:"O"`
}

// PupilOffset is the normalized pupil displacement from the eye center.
type PupilOffset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GazeDirection is the eye look target as two angles.
// Pitch is driven by vertical pupil offset, Yaw by horizontal.
type GazeDirection struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// FaceEstimate is the face solve for one frame.
type FaceEstimate struct {
	Head  *Rotation    `json:"head,omitempty"`
	Eye   *EyeOpenness `json:"eye,omitempty"`
	Mouth *MouthShape  `json:"mouth,omitempty"`
	Pupil *PupilOffset `json:"pupil,omitempty"`
}

// HipsEstimate is the root rotation and position from the pose solve.
type HipsEstimate struct {
	Rotation *Rotation `json:"rotation,omitempty"`
	Position *r3.Vec   `json:"position,omitempty"`
}

// PoseEstimate is the body solve for one frame.
// LeftHand and RightHand carry the forearm-derived wrist rotation; only its Z
// component is consumed.
type PoseEstimate struct {
	Hips  *HipsEstimate `json:"hips,omitempty"`
	Spine *Rotation     `json:"spine,omitempty"`

	LeftUpperArm  *Rotation `json:"leftUpperArm,omitempty"`
	LeftLowerArm  *Rotation `json:"leftLowerArm,omitempty"`
	RightUpperArm *Rotation `json:"rightUpperArm,omitempty"`
	RightLowerArm *Rotation `json:"rightLowerArm,omitempty"`

	LeftUpperLeg  *Rotation `json:"leftUpperLeg,omitempty"`
	LeftLowerLeg  *Rotation `json:"leftLowerLeg,omitempty"`
	RightUpperLeg *Rotation `json:"rightUpperLeg,omitempty"`
	RightLowerLeg *Rotation `json:"rightLowerLeg,omitempty"`

	LeftHand  *Rotation `json:"leftHand,omitempty"`
	RightHand *Rotation `json:"rightHand,omitempty"`
}

// HandEstimate is the hand solve for one side.
// Wrist carries the hand-local rotation; only X and Y are consumed.
type HandEstimate struct {
	Wrist   *Rotation                  `json:"wrist,omitempty"`
	Fingers map[FingerSegment]Rotation `json:"fingers,omitempty"`
}

// Wrist returns the pose-derived wrist rotation for side.
func (p *PoseEstimate) Wrist(side Side) *Rotation {
	if p == nil {
		return nil
	}
	if side == Left {
		return p.LeftHand
	}
	return p.RightHand
}

// EstimateBundle is everything the solver produced for one frame.
// Any field may be nil when its landmarks were not detected.
type EstimateBundle struct {
	Face      *FaceEstimate `json:"face,omitempty"`
	Pose      *PoseEstimate `json:"pose,omitempty"`
	LeftHand  *HandEstimate `json:"leftHand,omitempty"`
	RightHand *HandEstimate `json:"rightHand,omitempty"`
}

// Hand returns the hand estimate for side.
func (b *EstimateBundle) Hand(side Side) *HandEstimate {
	if side == Left {
		return b.LeftHand
	}
	return b.RightHand
}

// IsEmpty reports whether the bundle carries no estimate at all.
func (b *EstimateBundle) IsEmpty() bool {
	return b.Face == nil && b.Pose == nil && b.LeftHand == nil && b.RightHand == nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
