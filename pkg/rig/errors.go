package rig

import "errors"

var (
	// ErrNilState is returned when a Retargeter is created without State.
	ErrNilState = errors.New("rig: smoothing state is nil")

	// ErrNilSink is returned when a Retargeter is created without a sink.
	ErrNilSink = errors.New("rig: skeleton sink is nil")

	// ErrInvalidFactor is returned when a damping or interpolation factor is
	// outside (0, 1].
	ErrInvalidFactor = errors.New("rig: factor outside (0, 1]")
)
