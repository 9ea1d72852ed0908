package rig

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// FrameReport summarizes one ProcessFrame pass.
type FrameReport struct {
	Applied    int  `json:"applied"`    // bones and positions written
	Skipped    int  `json:"skipped"`    // targets with no signal this frame
	Missing    int  `json:"missing"`    // targets the avatar has no bone or blendshape for
	Degenerate int  `json:"degenerate"` // non-finite signals
	Weights    int  `json:"weights"`    // blendshape weights written
	Gaze       bool `json:"gaze"`
}

// Retargeter applies solver estimates to one avatar.
// It owns its State exclusively and must not be called concurrently.
type Retargeter struct {
	cfg      Config
	state    *State
	sink     SkeletonSink
	resolver *Resolver
	gaze     GazeSmoother
	log      *slog.Logger
}

// NewRetargeter validates cfg and binds it to a session's state, sink and
// blendshape catalog.
func NewRetargeter(cfg Config, state *State, sink SkeletonSink, catalog Catalog) (*Retargeter, error) {
	if state == nil {
		return nil, ErrNilState
	}
	if sink == nil {
		return nil, ErrNilSink
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retarget config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Retargeter{
		cfg:      cfg,
		state:    state,
		sink:     sink,
		resolver: NewResolver(catalog),
		gaze:     NewGazeSmoother(cfg.GazeLerp),
		log:      logger.With("component", "retargeter"),
	}, nil
}

// State returns the smoothing state owned by this retargeter.
func (r *Retargeter) State() *State {
	return r.state
}

// Resolver returns the blendshape resolver for the loaded avatar.
func (r *Retargeter) Resolver() *Resolver {
	return r.resolver
}

// ProcessFrame runs one retargeting pass over bundle.
// Targets without a signal are left untouched in both State and sink.
func (r *Retargeter) ProcessFrame(bundle EstimateBundle) FrameReport {
	var report FrameReport

	if bundle.Face != nil {
		r.applyFace(bundle.Face, &report)
	}

	for _, t := range r.cfg.Targets {
		rot, ok := t.Source(&bundle)
		if !ok {
			report.Skipped++
			continue
		}
		r.applyRotation(t, rot, &report)
	}

	if pt := r.cfg.HipsPosition; pt.Source != nil {
		if pos, ok := pt.Source(&bundle); ok {
			r.applyPosition(pt, pos, &report)
		} else {
			report.Skipped++
		}
	}

	return report
}

func (r *Retargeter) applyRotation(t Target, rot Rotation, report *FrameReport) {
	if !r.sink.HasBone(t.Bone) {
		report.Missing++
		return
	}

	damped := rot.Scale(t.Damping)
	if !damped.IsFinite() {
		report.Degenerate++
		r.log.Debug("degenerate rotation", "bone", t.Bone, "x", rot.X, "y", rot.Y, "z", rot.Z)
	}
	target := EulerToQuat(damped)

	next := Slerp(r.state.Orientation(t.Bone), target, t.Lerp)
	r.state.SetOrientation(t.Bone, next)
	r.sink.SetBoneRotation(t.Bone, next)
	report.Applied++
}

func (r *Retargeter) applyPosition(t PositionTarget, raw r3.Vec, report *FrameReport) {
	if !r.sink.HasBone(t.Bone) {
		report.Missing++
		return
	}
	if !isFinite(raw.X) || !isFinite(raw.Y) || !isFinite(raw.Z) {
		report.Degenerate++
		return
	}

	next := lerpVec(r.state.Position(t.Bone), t.Apply(raw), t.Lerp)
	r.state.SetPosition(t.Bone, next)
	r.sink.SetBonePosition(t.Bone, next)
	report.Applied++
}

func (r *Retargeter) applyFace(face *FaceEstimate, report *FrameReport) {
	if face.Eye != nil {
		// Detector openness is 1 when open; blink weights are 1 when closed.
		r.applyWeight(BlendBlinkL, clamp(1-face.Eye.Left, 0, 1), r.cfg.EyeLerp, report)
		r.applyWeight(BlendBlinkR, clamp(1-face.Eye.Right, 0, 1), r.cfg.EyeLerp, report)
	}

	if m := face.Mouth; m != nil {
		r.applyWeight(BlendI, clamp(m.I, 0, 1), r.cfg.MouthLerp, report)
		r.applyWeight(BlendA, clamp(m.A, 0, 1), r.cfg.MouthLerp, report)
		r.applyWeight(BlendE, clamp(m.E, 0, 1), r.cfg.MouthLerp, report)
		r.applyWeight(BlendO, clamp(m.O, 0, 1), r.cfg.MouthLerp, report)
		r.applyWeight(BlendU, clamp(m.U, 0, 1), r.cfg.MouthLerp, report)
	}

	if p := face.Pupil; p != nil {
		if !isFinite(p.X) || !isFinite(p.Y) {
			report.Degenerate++
			return
		}
		dir := r.gaze.Update(r.state, *p)
		r.sink.SetGaze(dir)
		report.Gaze = true
	}
}

func (r *Retargeter) applyWeight(logical BlendName, target, factor float64, report *FrameReport) {
	name, ok := r.resolver.Lookup(logical)
	if !ok {
		report.Missing++
		r.log.Debug("blendshape not on avatar", "logical", logical, "resolved", name)
		return
	}
	if !isFinite(target) {
		report.Degenerate++
		return
	}

	w := clamp(lerp(r.state.Weight(name), target, factor), 0, 1)
	r.state.SetWeight(name, w)
	r.sink.SetBlendWeight(name, w)
	report.Weights++
}
