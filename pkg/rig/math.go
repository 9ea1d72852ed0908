package rig

import (
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateLen is the quaternion length below which normalization is undefined.
const degenerateLen = 1e-9

// lerp performs linear interpolation from a toward b.
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// clamp restricts a value to a range.
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// lerpVec interpolates positions linearly.
func lerpVec(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// safeQuat normalizes q, returning identity for NaN, infinite or near-zero
// input.
func safeQuat(q mgl64.Quat) mgl64.Quat {
	if !isFinite(q.W) || !isFinite(q.V[0]) || !isFinite(q.V[1]) || !isFinite(q.V[2]) {
		return mgl64.QuatIdent()
	}
	if q.Len() < degenerateLen {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// EulerToQuat converts an XYZ Euler rotation to a unit quaternion.
// Non-finite input yields identity.
func EulerToQuat(r Rotation) mgl64.Quat {
	if !r.IsFinite() {
		return mgl64.QuatIdent()
	}
	return safeQuat(mgl64.AnglesToQuat(r.X, r.Y, r.Z, mgl64.XYZ))
}

// Slerp interpolates from a toward b along the shortest arc.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	return safeQuat(mgl64.QuatSlerp(safeQuat(a), safeQuat(b), t))
}
