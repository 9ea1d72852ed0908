package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// BoneSink looks up and mutates skeleton bones.
type BoneSink interface {
	HasBone(bone BoneName) bool
	SetBoneRotation(bone BoneName, q mgl64.Quat)
	SetBonePosition(bone BoneName, p r3.Vec)
}

// BlendSink sets facial blendshape weights in [0,1].
type BlendSink interface {
	SetBlendWeight(name string, weight float64)
}

// GazeSink points the avatar's eyes.
type GazeSink interface {
	SetGaze(dir GazeDirection)
}

// SkeletonSink is everything the Retargeter writes to.
// The Retargeter never reads values back from it.
type SkeletonSink interface {
	BoneSink
	BlendSink
	GazeSink
}
