package timed

import "errors"

// Sentinel errors shared by the temporal containers. Invalid arguments are
// always detected before any mutation, so a failed call leaves its
// container unmodified.
var (
	// ErrInvalidRange is returned by range operations when to < from.
	ErrInvalidRange = errors.New("invalid range: to precedes from")

	// ErrInvalidInterval is returned by the interval index when end < start.
	ErrInvalidInterval = errors.New("invalid interval: end precedes start")

	// ErrInvalidCapacity is returned by fixed-capacity containers when the
	// requested capacity is not positive.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrEmpty is returned by pop-style accessors on an empty container.
	ErrEmpty = errors.New("container is empty")
)
