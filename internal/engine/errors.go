package engine

import "errors"

var (
	// ErrOriginMismatch is returned when two basis rays that must share an
	// origin do not.
	ErrOriginMismatch = errors.New("rays should have the same origin")

	// ErrDegenerateBasis is returned when two basis rays do not span a plane.
	ErrDegenerateBasis = errors.New("basis rays do not span a plane")

	// ErrDegenerateSampling is returned for fewer than two samples along an
	// axis; the sample spacing divides by N-1.
	ErrDegenerateSampling = errors.New("at least two samples per axis are required")

	// ErrInvalidSolid is returned for out-of-range solid parameters.
	ErrInvalidSolid = errors.New("invalid solid")
)
