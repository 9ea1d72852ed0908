package rig

// BoneName identifies a humanoid bone using VRM humanoid naming.
type BoneName string

// Body bones.
const (
	BoneHips  BoneName = "hips"
	BoneSpine BoneName = "spine"
	BoneChest BoneName = "chest"
	BoneNeck  BoneName = "neck"
	BoneHead  BoneName = "head"

	BoneLeftUpperArm  BoneName = "leftUpperArm"
	BoneLeftLowerArm  BoneName = "leftLowerArm"
	BoneLeftHand      BoneName = "leftHand"
	BoneRightUpperArm BoneName = "rightUpperArm"
	BoneRightLowerArm BoneName = "rightLowerArm"
	BoneRightHand     BoneName = "rightHand"

	BoneLeftUpperLeg  BoneName = "leftUpperLeg"
	BoneLeftLowerLeg  BoneName = "leftLowerLeg"
	BoneRightUpperLeg BoneName = "rightUpperLeg"
	BoneRightLowerLeg BoneName = "rightLowerLeg"
)

// Side selects the left or right half of the body.
type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Sides lists both sides in processing order.
var Sides = [2]Side{Left, Right}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Left {
		return Right
	}
	return Left
}

// FingerSegment is a side-neutral finger joint, e.g. "IndexProximal".
type FingerSegment string

// The 15 finger segments solved per hand.
const (
	ThumbProximal      FingerSegment = "ThumbProximal"
	ThumbIntermediate  FingerSegment = "ThumbIntermediate"
	ThumbDistal        FingerSegment = "ThumbDistal"
	IndexProximal      FingerSegment = "IndexProximal"
	IndexIntermediate  FingerSegment = "IndexIntermediate"
	IndexDistal        FingerSegment = "IndexDistal"
	MiddleProximal     FingerSegment = "MiddleProximal"
	MiddleIntermediate FingerSegment = "MiddleIntermediate"
	MiddleDistal       FingerSegment = "MiddleDistal"
	RingProximal       FingerSegment = "RingProximal"
	RingIntermediate   FingerSegment = "RingIntermediate"
	RingDistal         FingerSegment = "RingDistal"
	LittleProximal     FingerSegment = "LittleProximal"
	LittleIntermediate FingerSegment = "LittleIntermediate"
	LittleDistal       FingerSegment = "LittleDistal"
)

// FingerSegments lists all segments in processing order.
var FingerSegments = []FingerSegment{
	RingProximal, RingIntermediate, RingDistal,
	IndexProximal, IndexIntermediate, IndexDistal,
	MiddleProximal, MiddleIntermediate, MiddleDistal,
	ThumbProximal, ThumbIntermediate, ThumbDistal,
	LittleProximal, LittleIntermediate, LittleDistal,
}

// HandBone returns the wrist bone for side.
func HandBone(side Side) BoneName {
	if side == Left {
		return BoneLeftHand
	}
	return BoneRightHand
}

// FingerBone returns the bone name of a finger segment on side.
func FingerBone(side Side, seg FingerSegment) BoneName {
	return BoneName(string(side) + string(seg))
}

// HumanoidBones returns every bone the retargeter can drive.
func HumanoidBones() []BoneName {
	bones := []BoneName{
		BoneHips, BoneSpine, BoneChest, BoneNeck, BoneHead,
		BoneLeftUpperArm, BoneLeftLowerArm, BoneLeftHand,
		BoneRightUpperArm, BoneRightLowerArm, BoneRightHand,
		BoneLeftUpperLeg, BoneLeftLowerLeg,
		BoneRightUpperLeg, BoneRightLowerLeg,
	}
	for _, side := range Sides {
		for _, seg := range FingerSegments {
			bones = append(bones, FingerBone(side, seg))
		}
	}
	return bones
}
