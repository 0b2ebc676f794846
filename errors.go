package robotroute

import "errors"

var (
	// ErrInvalidConfiguration is returned when a grid cannot be built from the
	// given order and wall fractions.
	ErrInvalidConfiguration = errors.New("invalid grid configuration")

	// ErrOutOfBounds is returned when a start or goal location is outside the
	// grid or on a wall.
	ErrOutOfBounds = errors.New("location out of bounds")

	ErrUnknownHeuristic = errors.New("unknown heuristic")
)
