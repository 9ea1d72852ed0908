package skeleton

import "github.com/teslashibe/go-vrig/pkg/rig"

// BoneState is the wire form of one bone.
type BoneState struct {
	// Rotation is a unit quaternion as x, y, z, w.
	Rotation [4]float64 `json:"rotation"`

	// Position is only set for bones that have been translated (the root).
	Position *[3]float64 `json:"position,omitempty"`

	// Changed is true when the bone was written during the frame.
	Changed bool `json:"changed,omitempty"`
}

// Snapshot is an immutable copy of an avatar pose.
type Snapshot struct {
	Avatar  string                     `json:"avatar"`
	Frame   uint64                     `json:"frame"`
	Bones   map[rig.BoneName]BoneState `json:"bones"`
	Weights map[string]float64         `json:"weights"`
	Gaze    rig.GazeDirection          `json:"gaze"`
}

// Changed returns only the bones written during the frame.
func (s Snapshot) Changed() map[rig.BoneName]BoneState {
	out := make(map[rig.BoneName]BoneState)
	for k, v := range s.Bones {
		if v.Changed {
			out[k] = v
		}
	}
	return out
}
