package rig

// DefaultGazeLerp is the per-frame gaze interpolation factor.
const DefaultGazeLerp = 0.4

// GazeSmoother low-passes the pupil offset into a look direction.
type GazeSmoother struct {
	Factor float64
}

// NewGazeSmoother creates a smoother with the given interpolation factor.
func NewGazeSmoother(factor float64) GazeSmoother {
	return GazeSmoother{Factor: factor}
}

// Update moves the stored gaze toward offset and returns the new direction.
// The vertical pupil offset drives Pitch and the horizontal offset drives Yaw;
// this swap is the look-at convention of the renderer and must not change.
func (g GazeSmoother) Update(state *State, offset PupilOffset) GazeDirection {
	prev := state.Gaze()
	next := GazeDirection{
		Pitch: lerp(prev.Pitch, offset.Y, g.Factor),
		Yaw:   lerp(prev.Yaw, offset.X, g.Factor),
	}
	state.SetGaze(next)
	return next
}
