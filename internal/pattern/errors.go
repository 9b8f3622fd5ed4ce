package pattern

import (
	"errors"

	"github.com/piwi3910/StitchKit/internal/geom"
)

var (
	// ErrStaleEdge is returned when a handle names an edge its panel has
	// since replaced.
	ErrStaleEdge = errors.New("stale edge reference")

	// ErrCrossSectionReorder is returned when a reorder would move an edge
	// into or out of a ruffle section.
	ErrCrossSectionReorder = errors.New("reorder across ruffle section boundary is not supported")

	// ErrInvalidReorder is returned when the reorder index lists do not
	// describe a permutation of the same positions.
	ErrInvalidReorder = errors.New("invalid reorder")

	ErrIndexOutOfRange = geom.ErrIndexOutOfRange
	ErrEmptyInterface  = errors.New("interface needs at least one edge")
	ErrInvalidRuffle   = errors.New("ruffle coefficient must be positive")
	ErrPanelMismatch   = errors.New("panel count does not match edge count")

	// ErrUnknownInterface is returned by Component.Interface for a missing name.
	ErrUnknownInterface = errors.New("unknown interface")
)
