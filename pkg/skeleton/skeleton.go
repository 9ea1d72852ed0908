// Package skeleton provides an in-memory avatar skeleton that records the
// pose written by the retargeter and publishes it as snapshots for renderers.
package skeleton

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"gonum.org/v1/gonum/spatial/r3"
)

// Manifest describes a loaded avatar.
type Manifest struct {
	Name string `json:"name"`

	// Bones lists the humanoid bones the avatar has. Empty means the full
	// humanoid set.
	Bones []rig.BoneName `json:"bones,omitempty"`

	// Blendshapes lists every blendshape name the avatar exposes.
	Blendshapes []string `json:"blendshapes,omitempty"`
}

// Catalog returns the blendshape catalog of the avatar.
func (m Manifest) Catalog() rig.Catalog {
	return rig.NewCatalog(m.Blendshapes...)
}

type bone struct {
	rotation    mgl64.Quat
	position    r3.Vec
	hasPosition bool
	dirty       bool
}

// Skeleton is a write-only pose target for one avatar.
// Writers and snapshot readers may run on different goroutines.
type Skeleton struct {
	name string

	mu      sync.RWMutex
	bones   map[rig.BoneName]*bone
	weights map[string]float64
	gaze    rig.GazeDirection
	frame   uint64
}

// New builds a skeleton in rest pose from manifest.
func New(m Manifest) *Skeleton {
	names := m.Bones
	if len(names) == 0 {
		names = rig.HumanoidBones()
	}

	s := &Skeleton{
		name:    m.Name,
		bones:   make(map[rig.BoneName]*bone, len(names)),
		weights: make(map[string]float64, len(m.Blendshapes)),
	}
	for _, n := range names {
		s.bones[n] = &bone{rotation: mgl64.QuatIdent()}
	}
	return s
}

// Name returns the avatar name.
func (s *Skeleton) Name() string {
	return s.name
}

// HasBone reports whether the avatar has bone.
func (s *Skeleton) HasBone(b rig.BoneName) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.bones[b]
	return ok
}

// SetBoneRotation sets a bone's local rotation. Unknown bones are ignored.
func (s *Skeleton) SetBoneRotation(b rig.BoneName, q mgl64.Quat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bn, ok := s.bones[b]; ok {
		bn.rotation = q
		bn.dirty = true
	}
}

// SetBonePosition sets a bone's local position. Unknown bones are ignored.
func (s *Skeleton) SetBonePosition(b rig.BoneName, p r3.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bn, ok := s.bones[b]; ok {
		bn.position = p
		bn.hasPosition = true
		bn.dirty = true
	}
}

// SetBlendWeight sets a blendshape weight, clamped to [0,1].
func (s *Skeleton) SetBlendWeight(name string, w float64) {
	if w < 0 {
		w = 0
	} else if w > 1 {
		w = 1
	}
	s.mu.Lock()
	s.weights[name] = w
	s.mu.Unlock()
}

// SetGaze sets the look-at direction.
func (s *Skeleton) SetGaze(d rig.GazeDirection) {
	s.mu.Lock()
	s.gaze = d
	s.mu.Unlock()
}

// Commit ends a frame and returns a snapshot of the full pose.
func (s *Skeleton) Commit() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame++
	snap := s.snapshotLocked()
	for _, bn := range s.bones {
		bn.dirty = false
	}
	return snap
}

// Snapshot returns the current pose without ending the frame.
func (s *Skeleton) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Skeleton) snapshotLocked() Snapshot {
	snap := Snapshot{
		Avatar:  s.name,
		Frame:   s.frame,
		Bones:   make(map[rig.BoneName]BoneState, len(s.bones)),
		Weights: make(map[string]float64, len(s.weights)),
		Gaze:    s.gaze,
	}
	for name, bn := range s.bones {
		st := BoneState{
			Rotation: [4]float64{bn.rotation.V[0], bn.rotation.V[1], bn.rotation.V[2], bn.rotation.W},
			Changed:  bn.dirty,
		}
		if bn.hasPosition {
			st.Position = &[3]float64{bn.position.X, bn.position.Y, bn.position.Z}
		}
		snap.Bones[name] = st
	}
	for k, v := range s.weights {
		snap.Weights[k] = v
	}
	return snap
}

// Ensure Skeleton implements the retargeter's sink.
var _ rig.SkeletonSink = (*Skeleton)(nil)
