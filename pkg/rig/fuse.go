package rig

// Axis indexes one Euler component.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Source names which of two signals owns an axis.
type Source int

const (
	Primary Source = iota
	Secondary
)

// AxisOwners assigns each axis to exactly one source.
type AxisOwners [3]Source

// WristOwners takes Z (forearm roll) from the pose solve and X/Y (palm
// orientation) from the hand solve.
var WristOwners = AxisOwners{
	AxisX: Secondary,
	AxisY: Secondary,
	AxisZ: Primary,
}

// Fuse merges two partial rotations axis by axis.
// Each output axis is copied from its owner; when the owner lacks that axis the
// output axis is left missing. Values are never averaged.
func Fuse(primary, secondary PartialRotation, owners AxisOwners) PartialRotation {
	pick := func(a Axis) *float64 {
		var v *float64
		if owners[a] == Primary {
			v = primary.Axis(a)
		} else {
			v = secondary.Axis(a)
		}
		if v == nil {
			return nil
		}
		c := *v
		return &c
	}
	return PartialRotation{X: pick(AxisX), Y: pick(AxisY), Z: pick(AxisZ)}
}

// FuseWrist builds the wrist target from the pose-derived and hand-local
// wrist rotations. If either source is absent the whole target is skipped.
func FuseWrist(poseWrist, handWrist *Rotation) (Rotation, bool) {
	if poseWrist == nil || handWrist == nil {
		return Rotation{}, false
	}
	return Fuse(Full(*poseWrist), Full(*handWrist), WristOwners).Complete()
}
