package skeleton

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/teslashibe/go-vrig/pkg/rig"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew_DefaultsToFullHumanoid(t *testing.T) {
	s := New(Manifest{Name: "test"})

	for _, b := range rig.HumanoidBones() {
		if !s.HasBone(b) {
			t.Errorf("missing %s", b)
		}
	}
}

func TestNew_RestrictedBones(t *testing.T) {
	s := New(Manifest{Bones: []rig.BoneName{rig.BoneHips, rig.BoneSpine}})

	if !s.HasBone(rig.BoneHips) {
		t.Error("hips should exist")
	}
	if s.HasBone(rig.FingerBone(rig.Left, rig.IndexProximal)) {
		t.Error("finger should not exist on a body-only rig")
	}

	// Writes to absent bones are ignored.
	s.SetBoneRotation(rig.BoneNeck, mgl64.QuatRotate(1, mgl64.Vec3{0, 1, 0}))
	if _, ok := s.Snapshot().Bones[rig.BoneNeck]; ok {
		t.Error("absent bone appeared in snapshot")
	}
}

func TestCommit_TracksChangedBones(t *testing.T) {
	s := New(Manifest{})
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{1, 0, 0})

	s.SetBoneRotation(rig.BoneSpine, q)
	s.SetBonePosition(rig.BoneHips, r3.Vec{X: 0.1, Y: 1, Z: 0})

	snap := s.Commit()
	if snap.Frame != 1 {
		t.Errorf("Frame = %d, want 1", snap.Frame)
	}

	changed := snap.Changed()
	if len(changed) != 2 {
		t.Errorf("changed = %d bones, want 2", len(changed))
	}
	spine := changed[rig.BoneSpine]
	if spine.Rotation != [4]float64{q.V[0], q.V[1], q.V[2], q.W} {
		t.Errorf("spine rotation = %v", spine.Rotation)
	}
	if hips := changed[rig.BoneHips]; hips.Position == nil || hips.Position[1] != 1 {
		t.Errorf("hips position = %v", hips.Position)
	}

	// Next frame with no writes: nothing changed, values retained.
	snap = s.Commit()
	if len(snap.Changed()) != 0 {
		t.Errorf("changed after empty frame: %v", snap.Changed())
	}
	if snap.Bones[rig.BoneSpine].Rotation != spine.Rotation {
		t.Error("spine rotation lost")
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(Manifest{Blendshapes: []string{"Blink_L"}})
	s.SetBlendWeight("Blink_L", 0.4)

	snap := s.Snapshot()
	s.SetBlendWeight("Blink_L", 0.9)

	if snap.Weights["Blink_L"] != 0.4 {
		t.Errorf("snapshot mutated: %v", snap.Weights["Blink_L"])
	}
}

func TestSetBlendWeight_Clamps(t *testing.T) {
	s := New(Manifest{})
	s.SetBlendWeight("aa", 1.5)
	s.SetBlendWeight("ih", -1)

	w := s.Snapshot().Weights
	if w["aa"] != 1 || w["ih"] != 0 {
		t.Errorf("weights = %v", w)
	}
}

func TestSkeleton_DrivenByRetargeter(t *testing.T) {
	m := Manifest{Name: "mini", Blendshapes: []string{"Blink_L", "Blink_R"}}
	s := New(m)
	r, err := rig.NewRetargeter(rig.DefaultConfig(), rig.NewState(), s, m.Catalog())
	if err != nil {
		t.Fatal(err)
	}

	r.ProcessFrame(rig.EstimateBundle{
		Face: &rig.FaceEstimate{
			Head:  &rig.Rotation{Y: 0.4},
			Eye:   &rig.EyeOpenness{Left: 0, Right: 1},
			Pupil: &rig.PupilOffset{X: 0.1},
		},
	})
	snap := s.Commit()

	if !snap.Bones[rig.BoneNeck].Changed {
		t.Error("neck not driven by face head rotation")
	}
	if !mgl64.FloatEqualThreshold(snap.Weights["Blink_L"], 0.3, 1e-9) {
		t.Errorf("Blink_L = %v, want 0.3", snap.Weights["Blink_L"])
	}
	if snap.Weights["Blink_R"] != 0 {
		t.Errorf("Blink_R = %v, want 0", snap.Weights["Blink_R"])
	}
	if !mgl64.FloatEqualThreshold(snap.Gaze.Yaw, 0.04, 1e-9) {
		t.Errorf("gaze yaw = %v, want 0.04", snap.Gaze.Yaw)
	}
}
