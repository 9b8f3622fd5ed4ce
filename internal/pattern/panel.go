// Package pattern implements the panel/interface/stitch kernel: panels that
// own closed outlines and a 3D placement, interfaces that group outline
// edges into seam sides, and the stitches that pair those sides.
package pattern

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"

	"github.com/piwi3910/StitchKit/internal/geom"
)

// PanelID identifies a panel within a pattern.
type PanelID string

// edgeSlot records whether an edge the panel has owned is still in its outline.
type edgeSlot struct {
	edge *geom.Edge
	live bool
}

// Panel is a flat piece of fabric: a closed outline in local 2D coordinates
// plus a placement in 3D. Every edge the panel has ever owned stays in its
// arena so handles held by interfaces can tell a replaced edge from an
// unknown one.
type Panel struct {
	ID          PanelID
	Name        string
	Translation v3.Vec
	Rotation    v3.Vec // intrinsic XYZ Euler angles, degrees

	outline *geom.EdgeSequence
	arena   map[geom.EdgeID]*edgeSlot
	version uint64
}

// NewPanel creates a panel that takes ownership of a closed outline.
func NewPanel(name string, outline *geom.EdgeSequence) (*Panel, error) {
	if err := outline.Validate(true); err != nil {
		return nil, fmt.Errorf("panel %s: %w", name, err)
	}
	p := &Panel{
		ID:      PanelID(uuid.New().String()[:8]),
		Name:    name,
		outline: outline,
		arena:   make(map[geom.EdgeID]*edgeSlot, outline.Len()),
	}
	for _, e := range outline.Edges() {
		p.arena[e.ID] = &edgeSlot{edge: e, live: true}
	}
	return p, nil
}

// MustPanel is like NewPanel but panics on error. It is meant for outlines
// built from literal coordinates.
func MustPanel(name string, outline *geom.EdgeSequence) *Panel {
	p, err := NewPanel(name, outline)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of edges in the outline.
func (p *Panel) Len() int { return p.outline.Len() }

// EdgeAt returns the outline edge at index i. Negative indices count from
// the end.
func (p *Panel) EdgeAt(i int) *geom.Edge { return p.outline.At(i) }

// Outline returns the outline edges as a new sequence. The edges are shared,
// so geometric changes through it are visible to the panel, but structural
// edits must go through Substitute.
func (p *Panel) Outline() *geom.EdgeSequence { return p.outline.Slice(0, p.outline.Len()) }

// Version increases with every structural edit of the outline.
func (p *Panel) Version() uint64 { return p.version }

// Edge resolves an edge ID against the arena.
func (p *Panel) Edge(id geom.EdgeID) (*geom.Edge, error) {
	slot, ok := p.arena[id]
	if !ok {
		return nil, fmt.Errorf("%w: edge %s is not part of panel %s", geom.ErrUnresolved, id.Short(), p.Name)
	}
	if !slot.live {
		return nil, fmt.Errorf("%w: edge %s of panel %s was replaced", ErrStaleEdge, id.Short(), p.Name)
	}
	return slot.edge, nil
}

// Owns reports whether e is currently part of the outline.
func (p *Panel) Owns(e *geom.Edge) bool {
	slot, ok := p.arena[e.ID]
	return ok && slot.live && slot.edge == e
}

// Substitute replaces orig in the outline with news. The outline must stay
// closed, otherwise nothing changes and an ErrTopology error is returned.
func (p *Panel) Substitute(orig *geom.Edge, news ...*geom.Edge) error {
	i := p.outline.Index(orig)
	if i < 0 {
		return fmt.Errorf("%w: edge %s is not in panel %s", geom.ErrUnresolved, orig.ID.Short(), p.Name)
	}
	return p.SubstituteAt(i, news...)
}

// SubstituteAt replaces the outline edge at index i with news.
func (p *Panel) SubstituteAt(i int, news ...*geom.Edge) error {
	if i < 0 {
		i += p.outline.Len()
	}
	if i < 0 || i >= p.outline.Len() {
		return fmt.Errorf("panel %s: %w: %d", p.Name, ErrIndexOutOfRange, i)
	}
	orig := p.outline.At(i)
	before := p.outline.Edges()
	if err := p.outline.Substitute(i, news...); err != nil {
		return fmt.Errorf("panel %s: %w", p.Name, err)
	}
	if err := p.outline.Validate(true); err != nil {
		p.outline = geom.NewEdgeSequence(before...)
		return fmt.Errorf("panel %s: substitute edge %d: %w", p.Name, i, err)
	}
	p.arena[orig.ID].live = false
	for _, e := range news {
		p.arena[e.ID] = &edgeSlot{edge: e, live: true}
	}
	p.version++
	Logger().Debug("panel edge substituted",
		"panel", p.Name, "index", i, "edge", orig.ID.Short(), "replacements", len(news))
	return nil
}

// Validate checks that the outline is closed and has no zero-length edges.
func (p *Panel) Validate() error {
	if err := p.outline.Validate(true); err != nil {
		return fmt.Errorf("panel %s: %w", p.Name, err)
	}
	if deg := p.outline.Degenerate(); len(deg) > 0 {
		return fmt.Errorf("panel %s: %w: zero-length edges at %v", p.Name, geom.ErrDegenerate, deg)
	}
	return nil
}

func (p *Panel) String() string {
	return fmt.Sprintf("Panel(%s, %d edges)", p.Name, p.outline.Len())
}
