package geom

import "errors"

var (
	// ErrTopology is returned when a chain breaks its contiguity invariant.
	ErrTopology = errors.New("topology error")

	// ErrDegenerate is returned for zero-length edges or impossible shapes.
	ErrDegenerate = errors.New("degenerate geometry")

	// ErrUnresolved is returned when an edge identity is not present.
	ErrUnresolved = errors.New("unresolved edge")

	// ErrIndexOutOfRange is returned for a position outside a sequence.
	ErrIndexOutOfRange = errors.New("index out of range")
)
