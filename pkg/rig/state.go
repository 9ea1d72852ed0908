package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the cross-frame memory of one avatar session.
// Bones never written report the identity rotation and zero position; blend
// weights default to 0 and gaze to straight ahead.
//
// State is not safe for concurrent use. One Retargeter owns it.
type State struct {
	orientations map[BoneName]mgl64.Quat
	positions    map[BoneName]r3.Vec
	weights      map[string]float64
	gaze         GazeDirection
}

// NewState returns a State with identity defaults.
func NewState() *State {
	return &State{
		orientations: make(map[BoneName]mgl64.Quat),
		positions:    make(map[BoneName]r3.Vec),
		weights:      make(map[string]float64),
	}
}

// Orientation returns the last applied rotation of bone.
func (s *State) Orientation(bone BoneName) mgl64.Quat {
	if q, ok := s.orientations[bone]; ok {
		return q
	}
	return mgl64.QuatIdent()
}

// SetOrientation records the rotation applied to bone.
func (s *State) SetOrientation(bone BoneName, q mgl64.Quat) {
	s.orientations[bone] = q
}

// Position returns the last applied position of bone.
func (s *State) Position(bone BoneName) r3.Vec {
	return s.positions[bone]
}

// SetPosition records the position applied to bone.
func (s *State) SetPosition(bone BoneName, p r3.Vec) {
	s.positions[bone] = p
}

// Weight returns the last applied weight of a concrete blendshape name.
func (s *State) Weight(name string) float64 {
	return s.weights[name]
}

// SetWeight records the weight applied to a concrete blendshape name.
func (s *State) SetWeight(name string, w float64) {
	s.weights[name] = w
}

// Gaze returns the last applied gaze direction.
func (s *State) Gaze() GazeDirection {
	return s.gaze
}

// SetGaze records the applied gaze direction.
func (s *State) SetGaze(g GazeDirection) {
	s.gaze = g
}

// Touched reports whether bone has ever been written.
func (s *State) Touched(bone BoneName) bool {
	_, rot := s.orientations[bone]
	_, pos := s.positions[bone]
	return rot || pos
}

// Bones returns the number of bones with a stored orientation.
func (s *State) Bones() int {
	return len(s.orientations)
}
