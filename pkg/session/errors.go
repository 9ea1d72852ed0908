package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session with the given id is connected.
	ErrSessionNotFound = errors.New("session not connected")

	// ErrSessionExists is returned when a client connects with an id already in use.
	ErrSessionExists = errors.New("session id already connected")

	// ErrNoAvatar is returned when an estimate arrives before an avatar manifest.
	ErrNoAvatar = errors.New("no avatar loaded")

	// ErrNoSolver is returned when raw landmarks arrive but the daemon has no solver.
	ErrNoSolver = errors.New("no landmark solver configured")
)
