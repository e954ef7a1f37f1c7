package domain

import "errors"

var (
	// ErrNotFound is returned when a feature does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSRIDMismatch is returned when an operation mixes reference systems.
	ErrSRIDMismatch = errors.New("geometries have different SRIDs")
	// ErrTooFewPoints is returned when a coordinate sequence is too short for its kind.
	ErrTooFewPoints = errors.New("too few points")
	// ErrRingNotClosed is returned when a polygon ring does not end where it starts.
	ErrRingNotClosed = errors.New("polygon ring is not closed")
	// ErrDimensionMismatch is returned when coordinate arrays differ in length.
	ErrDimensionMismatch = errors.New("coordinate arrays have different lengths")
	// ErrUnknownKind is returned for an unrecognised geometry type name.
	ErrUnknownKind = errors.New("unknown geometry kind")
	// ErrKindMismatch is returned when a geometry is not of the expected kind.
	ErrKindMismatch = errors.New("unexpected geometry kind")
	// ErrInvalidFeature is returned when a feature fails validation.
	ErrInvalidFeature = errors.New("invalid feature")
)
