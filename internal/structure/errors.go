package structure

import "errors"

var (
	ErrUnknownNode       = errors.New("structure: unknown node")
	ErrUnknownSegment    = errors.New("structure: unknown segment")
	ErrUnknownWeight     = errors.New("structure: unknown weight")
	ErrSelfLoop          = errors.New("structure: segment endpoints must differ")
	ErrDuplicateSegment  = errors.New("structure: nodes already connected")
	ErrConflictingModes  = errors.New("structure: segment cannot be both tension-only and compression-only")
	ErrBadAttachment     = errors.New("structure: weight must hang from exactly one node or segment")
	ErrNoSegmentInRange  = errors.New("structure: no segment within range")
	ErrInvalidDimensions = errors.New("structure: mass and radius must be positive")
)
