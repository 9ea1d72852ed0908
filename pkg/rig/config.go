package rig

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Default blendshape smoothing factors.
const (
	DefaultEyeLerp   = 0.3 // blink flicker suppression
	DefaultMouthLerp = 0.1 // visemes are noisier than blinks
)

// DefaultBoneLerp is the interpolation factor used when a target does not
// need its own.
const DefaultBoneLerp = 0.3

// RotationSource extracts one target's rotation from a bundle.
// It returns false when the signal is absent this frame.
type RotationSource func(b *EstimateBundle) (Rotation, bool)

// PositionSource extracts one target's position from a bundle.
type PositionSource func(b *EstimateBundle) (r3.Vec, bool)

// Target is one row of the retargeting table.
type Target struct {
	Bone    BoneName
	Damping float64 // per-axis attenuation applied before conversion, (0,1]
	Lerp    float64 // slerp factor toward the new rotation, (0,1]
	Source  RotationSource
}

// PositionTarget drives a root bone's translation.
// The raw position is mirrored per axis, offset, then damped.
type PositionTarget struct {
	Bone    BoneName
	Mirror  r3.Vec
	Offset  r3.Vec
	Damping float64
	Lerp    float64
	Source  PositionSource
}

// Apply maps a raw solver position into avatar space.
func (t PositionTarget) Apply(p r3.Vec) r3.Vec {
	v := r3.Vec{
		X: p.X*t.Mirror.X + t.Offset.X,
		Y: p.Y*t.Mirror.Y + t.Offset.Y,
		Z: p.Z*t.Mirror.Z + t.Offset.Z,
	}
	return r3.Scale(t.Damping, v)
}

// Config holds all tunable parameters of a Retargeter.
type Config struct {
	// Bone rotation table
	Targets []Target

	// Root translation
	HipsPosition PositionTarget

	// Facial smoothing
	EyeLerp   float64
	MouthLerp float64
	GazeLerp  float64

	// Logger receives debug output; nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the recommended tuning for a webcam-driven avatar.
func DefaultConfig() Config {
	return Config{
		Targets:      DefaultTargets(),
		HipsPosition: DefaultHipsPosition(),
		EyeLerp:      DefaultEyeLerp,
		MouthLerp:    DefaultMouthLerp,
		GazeLerp:     DefaultGazeLerp,
	}
}

// SmoothConfig halves every bone's responsiveness for steadier motion.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	for i := range cfg.Targets {
		cfg.Targets[i].Lerp *= 0.5
	}
	cfg.HipsPosition.Lerp *= 0.5
	return cfg
}

// SnappyConfig trades smoothness for latency.
func SnappyConfig() Config {
	cfg := DefaultConfig()
	for i := range cfg.Targets {
		cfg.Targets[i].Lerp = clamp(cfg.Targets[i].Lerp*1.5, 0, 1)
	}
	cfg.HipsPosition.Lerp = clamp(cfg.HipsPosition.Lerp*1.5, 0, 1)
	cfg.GazeLerp = 0.6
	return cfg
}

// Validate checks every factor is inside (0, 1].
func (c Config) Validate() error {
	for _, t := range c.Targets {
		if t.Source == nil {
			return fmt.Errorf("target %s: missing source", t.Bone)
		}
		if err := checkFactor(string(t.Bone)+" damping", t.Damping); err != nil {
			return err
		}
		if err := checkFactor(string(t.Bone)+" lerp", t.Lerp); err != nil {
			return err
		}
	}
	if c.HipsPosition.Source != nil {
		if err := checkFactor("hips position damping", c.HipsPosition.Damping); err != nil {
			return err
		}
		if err := checkFactor("hips position lerp", c.HipsPosition.Lerp); err != nil {
			return err
		}
	}
	if err := checkFactor("eye lerp", c.EyeLerp); err != nil {
		return err
	}
	if err := checkFactor("mouth lerp", c.MouthLerp); err != nil {
		return err
	}
	return checkFactor("gaze lerp", c.GazeLerp)
}

func checkFactor(name string, v float64) error {
	if !(v > 0 && v <= 1) {
		return fmt.Errorf("%s = %v: %w", name, v, ErrInvalidFactor)
	}
	return nil
}

// DefaultTargets returns the bone table.
// Chest and Spine share the spine signal; damping splits it so the chest
// bends less than the lower spine.
func DefaultTargets() []Target {
	targets := []Target{
		{Bone: BoneNeck, Damping: 0.7, Lerp: DefaultBoneLerp, Source: faceHead},

		{Bone: BoneHips, Damping: 0.7, Lerp: DefaultBoneLerp, Source: hipsRotation},
		{Bone: BoneChest, Damping: 0.25, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.Spine })},
		{Bone: BoneSpine, Damping: 0.45, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.Spine })},

		{Bone: BoneRightUpperArm, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.RightUpperArm })},
		{Bone: BoneRightLowerArm, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.RightLowerArm })},
		{Bone: BoneLeftUpperArm, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.LeftUpperArm })},
		{Bone: BoneLeftLowerArm, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.LeftLowerArm })},

		{Bone: BoneLeftUpperLeg, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.LeftUpperLeg })},
		{Bone: BoneLeftLowerLeg, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.LeftLowerLeg })},
		{Bone: BoneRightUpperLeg, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.RightUpperLeg })},
		{Bone: BoneRightLowerLeg, Damping: 1, Lerp: DefaultBoneLerp, Source: poseBone(func(p *PoseEstimate) *Rotation { return p.RightLowerLeg })},
	}

	for _, side := range Sides {
		targets = append(targets, Target{Bone: HandBone(side), Damping: 1, Lerp: DefaultBoneLerp, Source: wrist(side)})
		for _, seg := range FingerSegments {
			targets = append(targets, Target{Bone: FingerBone(side, seg), Damping: 1, Lerp: DefaultBoneLerp, Source: finger(side, seg)})
		}
	}
	return targets
}

// DefaultHipsPosition mirrors x and z so the avatar moves like a mirror image
// of the user, and lifts the root to standing height.
func DefaultHipsPosition() PositionTarget {
	return PositionTarget{
		Bone:    BoneHips,
		Mirror:  r3.Vec{X: -1, Y: 1, Z: -1},
		Offset:  r3.Vec{X: -0.1, Y: 1, Z: 0},
		Damping: 1,
		Lerp:    0.07,
		Source:  hipsPosition,
	}
}

func faceHead(b *EstimateBundle) (Rotation, bool) {
	if b.Face == nil || b.Face.Head == nil {
		return Rotation{}, false
	}
	return *b.Face.Head, true
}

func hipsRotation(b *EstimateBundle) (Rotation, bool) {
	if b.Pose == nil || b.Pose.Hips == nil || b.Pose.Hips.Rotation == nil {
		return Rotation{}, false
	}
	return *b.Pose.Hips.Rotation, true
}

func hipsPosition(b *EstimateBundle) (r3.Vec, bool) {
	if b.Pose == nil || b.Pose.Hips == nil || b.Pose.Hips.Position == nil {
		return r3.Vec{}, false
	}
	return *b.Pose.Hips.Position, true
}

func poseBone(get func(p *PoseEstimate) *Rotation) RotationSource {
	return func(b *EstimateBundle) (Rotation, bool) {
		if b.Pose == nil {
			return Rotation{}, false
		}
		r := get(b.Pose)
		if r == nil {
			return Rotation{}, false
		}
		return *r, true
	}
}

func wrist(side Side) RotationSource {
	return func(b *EstimateBundle) (Rotation, bool) {
		hand := b.Hand(side)
		if hand == nil {
			return Rotation{}, false
		}
		return FuseWrist(b.Pose.Wrist(side), hand.Wrist)
	}
}

func finger(side Side, seg FingerSegment) RotationSource {
	return func(b *EstimateBundle) (Rotation, bool) {
		hand := b.Hand(side)
		if hand == nil {
			return Rotation{}, false
		}
		r, ok := hand.Fingers[seg]
		return r, ok
	}
}
