package pattern

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/StitchKit/internal/geom"
)

// RuffleTolerance is how close to 1 a ruffle coefficient must be to be
// treated as no gathering.
const RuffleTolerance = 1e-3

// EdgeRef is a handle to an edge owned by a panel. It is resolved through
// the panel's arena on every use.
type EdgeRef struct {
	Panel *Panel
	ID    geom.EdgeID
}

// Resolve returns the referenced edge, or ErrStaleEdge if the panel has
// replaced it since the handle was taken.
func (r EdgeRef) Resolve() (*geom.Edge, error) {
	return r.Panel.Edge(r.ID)
}

// RuffleSection applies a gathering coefficient to interface positions
// [Lo, Hi). A coefficient above 1 means the fabric is gathered into the
// stitched length.
type RuffleSection struct {
	Coefficient float64
	Lo, Hi      int
}

// Contains reports whether position i lies in the section.
func (s RuffleSection) Contains(i int) bool { return i >= s.Lo && i < s.Hi }

// Interface is an ordered group of panel edges that is sewn as one seam
// side. It may span several panels. The refs, flip and ruffle bookkeeping
// is kept aligned under every edit.
type Interface struct {
	refs   []EdgeRef
	flip   []bool
	ruffle []RuffleSection
}

// NewInterface wraps edges of panel with no gathering.
func NewInterface(panel *Panel, edges ...*geom.Edge) (*Interface, error) {
	return NewRuffledInterface(panel, 1, edges...)
}

// NewRuffledInterface wraps edges of panel with one ruffle section of the
// given coefficient spanning all of them.
func NewRuffledInterface(panel *Panel, coeff float64, edges ...*geom.Edge) (*Interface, error) {
	if len(edges) == 0 {
		return nil, ErrEmptyInterface
	}
	if coeff <= 0 || math.IsNaN(coeff) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRuffle, coeff)
	}
	in := &Interface{
		refs:   make([]EdgeRef, len(edges)),
		flip:   make([]bool, len(edges)),
		ruffle: []RuffleSection{{Coefficient: coeff, Lo: 0, Hi: len(edges)}},
	}
	for i, e := range edges {
		if !panel.Owns(e) {
			return nil, fmt.Errorf("%w: edge %s is not in the outline of panel %s", geom.ErrUnresolved, e.ID.Short(), panel.Name)
		}
		in.refs[i] = EdgeRef{Panel: panel, ID: e.ID}
	}
	return in, nil
}

// MustInterface is like NewInterface but panics on error.
func MustInterface(panel *Panel, edges ...*geom.Edge) *Interface {
	in, err := NewInterface(panel, edges...)
	if err != nil {
		panic(err)
	}
	return in
}

// Len returns the number of edges.
func (in *Interface) Len() int { return len(in.refs) }

// Refs returns a copy of the edge handles.
func (in *Interface) Refs() []EdgeRef { return slices.Clone(in.refs) }

// Panels returns the owning panel of each edge.
func (in *Interface) Panels() []*Panel {
	out := make([]*Panel, len(in.refs))
	for i, r := range in.refs {
		out[i] = r.Panel
	}
	return out
}

// FlipOverrides returns a copy of the forced-flip flags.
func (in *Interface) FlipOverrides() []bool { return slices.Clone(in.flip) }

// RuffleSections returns a copy of the ruffle sections.
func (in *Interface) RuffleSections() []RuffleSection { return slices.Clone(in.ruffle) }

// Edges resolves every handle.
func (in *Interface) Edges() ([]*geom.Edge, error) {
	out := make([]*geom.Edge, len(in.refs))
	for i, r := range in.refs {
		e, err := r.Resolve()
		if err != nil {
			return nil, fmt.Errorf("interface edge %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

// Coefficient returns the ruffle coefficient at position i. Positions not
// covered by any section are not gathered.
func (in *Interface) Coefficient(i int) float64 {
	for _, s := range in.ruffle {
		if s.Contains(i) {
			return s.Coefficient
		}
	}
	return 1
}

// SetFlipOverride forces edge i to be treated as reversed (or clears it).
// It panics if i is out of range, like a slice index.
func (in *Interface) SetFlipOverride(i int, v bool) *Interface {
	in.flip[i] = v
	return in
}

func (in *Interface) edge3D(i int) (start, end v3.Vec, err error) {
	e, err := in.refs[i].Resolve()
	if err != nil {
		return v3.Vec{}, v3.Vec{}, fmt.Errorf("interface edge %d: %w", i, err)
	}
	p := in.refs[i].Panel
	return p.PointTo3D(e.Start.Point2D), p.PointTo3D(e.End.Point2D), nil
}

func (in *Interface) mid3D(i int) (v3.Vec, error) {
	e, err := in.refs[i].Resolve()
	if err != nil {
		return v3.Vec{}, fmt.Errorf("interface edge %d: %w", i, err)
	}
	return in.refs[i].Panel.PointTo3D(e.Midpoint()), nil
}

// NeedsFlipping decides whether edge i runs against the general direction
// of the interface, judging by the 3D distance of its endpoints to the
// midpoints of its neighbours. A forced flip always wins. The decision is
// local and can misfire for unusual 3D arrangements.
func (in *Interface) NeedsFlipping(i int) (bool, error) {
	n := len(in.refs)
	if i < 0 || i >= n {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, n)
	}
	if in.flip[i] {
		return true, nil
	}
	if n == 1 {
		return false, nil
	}
	s, e, err := in.edge3D(i)
	if err != nil {
		return false, err
	}
	switch i {
	case 0:
		next, err := in.mid3D(1)
		if err != nil {
			return false, err
		}
		return s.Sub(next).Length() < e.Sub(next).Length(), nil
	case n - 1:
		prev, err := in.mid3D(i - 1)
		if err != nil {
			return false, err
		}
		return s.Sub(prev).Length() > e.Sub(prev).Length(), nil
	}
	prev, err := in.mid3D(i - 1)
	if err != nil {
		return false, err
	}
	next, err := in.mid3D(i + 1)
	if err != nil {
		return false, err
	}
	forward := s.Sub(prev).Length() + e.Sub(next).Length()
	flipped := s.Sub(next).Length() + e.Sub(prev).Length()
	return flipped < forward, nil
}

// OrientedEdges returns copies of the edges, each reversed where
// NeedsFlipping says so. The copy's Flipped flag records the decision.
// The interface's own edges are not touched.
func (in *Interface) OrientedEdges() (*geom.EdgeSequence, error) {
	edges, err := in.Edges()
	if err != nil {
		return nil, err
	}
	out := geom.NewEdgeSequence(edges...).Copy()
	for i := range edges {
		flip, err := in.NeedsFlipping(i)
		if err != nil {
			return nil, err
		}
		e := out.At(i)
		if flip {
			e.Reverse()
		}
		e.Flipped = flip
	}
	return out, nil
}

// ProjectingEdges returns a copy of the edges in which every gathered
// section is stretched to its flat length, i.e. scaled by 1/coefficient.
// This is the shape the counterpart panel must match.
func (in *Interface) ProjectingEdges(oriented bool) (*geom.EdgeSequence, error) {
	var seq *geom.EdgeSequence
	if oriented {
		var err error
		if seq, err = in.OrientedEdges(); err != nil {
			return nil, err
		}
	} else {
		edges, err := in.Edges()
		if err != nil {
			return nil, err
		}
		seq = geom.NewEdgeSequence(edges...).Copy()
	}
	for _, s := range in.ruffle {
		if math.Abs(s.Coefficient-1) <= RuffleTolerance {
			continue
		}
		if err := seq.Slice(s.Lo, s.Hi).Extend(1 / s.Coefficient); err != nil {
			return nil, fmt.Errorf("ruffle section [%d, %d): %w", s.Lo, s.Hi, err)
		}
	}
	return seq, nil
}

// Verts3D returns the world position of every vertex the interface
// touches, each vertex once.
func (in *Interface) Verts3D() ([]v3.Vec, error) {
	seen := make(map[*geom.Vertex]bool)
	var out []v3.Vec
	for i, r := range in.refs {
		e, err := r.Resolve()
		if err != nil {
			return nil, fmt.Errorf("interface edge %d: %w", i, err)
		}
		for _, v := range []*geom.Vertex{e.Start, e.End} {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, r.Panel.PointTo3D(v.Point2D))
		}
	}
	return out, nil
}

// BBox3D is the element-wise min/max of Verts3D.
func (in *Interface) BBox3D() (sdf.Box3, error) {
	verts, err := in.Verts3D()
	if err != nil {
		return sdf.Box3{}, err
	}
	if len(verts) == 0 {
		return sdf.Box3{}, ErrEmptyInterface
	}
	box := sdf.Box3{Min: verts[0], Max: verts[0]}
	for _, v := range verts[1:] {
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box, nil
}

// Reverse reverses the edge order. With withEdgeDirReverse each forced-flip
// flag is inverted as well. Edge objects are not modified.
func (in *Interface) Reverse(withEdgeDirReverse bool) *Interface {
	n := len(in.refs)
	slices.Reverse(in.refs)
	slices.Reverse(in.flip)
	if withEdgeDirReverse {
		for i := range in.flip {
			in.flip[i] = !in.flip[i]
		}
	}
	slices.Reverse(in.ruffle)
	for i, s := range in.ruffle {
		in.ruffle[i].Lo, in.ruffle[i].Hi = n-s.Hi, n-s.Lo
	}
	return in
}

// Reorder moves the entry at position current[k] to position target[k].
// Positions not listed keep their content. Both lists must name the same
// set of positions, and no entry may leave or enter a ruffle section. On
// error the interface is unchanged.
func (in *Interface) Reorder(current, target []int) error {
	n := len(in.refs)
	if len(current) != len(target) {
		return fmt.Errorf("%w: %d current positions, %d targets", ErrInvalidReorder, len(current), len(target))
	}
	for k := range current {
		for _, idx := range []int{current[k], target[k]} {
			if idx < 0 || idx >= n {
				return fmt.Errorf("reorder: %w: %d not in [0, %d)", ErrIndexOutOfRange, idx, n)
			}
		}
	}
	for k := range current {
		for _, s := range in.ruffle {
			if s.Contains(current[k]) != s.Contains(target[k]) {
				return fmt.Errorf("%w: %d -> %d crosses section [%d, %d)",
					ErrCrossSectionReorder, current[k], target[k], s.Lo, s.Hi)
			}
		}
	}
	from, to := slices.Clone(current), slices.Clone(target)
	slices.Sort(from)
	slices.Sort(to)
	if !slices.Equal(from, to) || len(slices.Compact(from)) != len(current) {
		return fmt.Errorf("%w: %v -> %v is not a permutation", ErrInvalidReorder, current, target)
	}

	refs, flip := slices.Clone(in.refs), slices.Clone(in.flip)
	for k := range current {
		refs[target[k]] = in.refs[current[k]]
		flip[target[k]] = in.flip[current[k]]
	}
	in.refs, in.flip = refs, flip
	Logger().Debug("interface reordered", "from", current, "to", target)
	return nil
}

// Substitute replaces orig with news, each owned by the matching entry of
// panels. A single panel applies to all new edges. The new edges must
// already be in their panels' outlines, so the panel is updated first.
func (in *Interface) Substitute(orig *geom.Edge, news []*geom.Edge, panels ...*Panel) error {
	i := slices.IndexFunc(in.refs, func(r EdgeRef) bool { return r.ID == orig.ID })
	if i < 0 {
		return fmt.Errorf("%w: edge %s is not in the interface", geom.ErrUnresolved, orig.ID.Short())
	}
	return in.SubstituteAt(i, news, panels...)
}

// SubstituteAt replaces the entry at position i. Negative positions count
// from the end. Ruffle section bounds after i shift by len(news)-1, so the
// replaced edge's section grows to cover all its replacements.
func (in *Interface) SubstituteAt(i int, news []*geom.Edge, panels ...*Panel) error {
	n := len(in.refs)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return fmt.Errorf("substitute: %w: %d not in [0, %d)", ErrIndexOutOfRange, i, n)
	}
	if len(news) == 0 {
		return fmt.Errorf("substitute: %w", ErrEmptyInterface)
	}
	switch len(panels) {
	case 1:
		p := panels[0]
		panels = make([]*Panel, len(news))
		for k := range panels {
			panels[k] = p
		}
	case len(news):
	default:
		return fmt.Errorf("substitute: %w: %d panels for %d edges", ErrPanelMismatch, len(panels), len(news))
	}
	refs := make([]EdgeRef, len(news))
	for k, e := range news {
		if !panels[k].Owns(e) {
			return fmt.Errorf("substitute: %w: edge %s is not in the outline of panel %s",
				geom.ErrUnresolved, e.ID.Short(), panels[k].Name)
		}
		refs[k] = EdgeRef{Panel: panels[k], ID: e.ID}
	}

	in.refs = slices.Replace(in.refs, i, i+1, refs...)
	in.flip = slices.Replace(in.flip, i, i+1, make([]bool, len(news))...)
	shift := len(news) - 1
	for k := range in.ruffle {
		if in.ruffle[k].Lo > i {
			in.ruffle[k].Lo += shift
		}
		if in.ruffle[k].Hi > i {
			in.ruffle[k].Hi += shift
		}
	}
	Logger().Debug("interface edge substituted", "index", i, "replacements", len(news))
	return nil
}

// FromMultiple concatenates interfaces into one seam side. Each source
// keeps its own ruffle sections, shifted to their new positions.
func FromMultiple(ints ...*Interface) *Interface {
	out := &Interface{}
	for _, src := range ints {
		shift := len(out.refs)
		for _, s := range src.ruffle {
			out.ruffle = append(out.ruffle, RuffleSection{Coefficient: s.Coefficient, Lo: s.Lo + shift, Hi: s.Hi + shift})
		}
		out.refs = append(out.refs, src.refs...)
		out.flip = append(out.flip, src.flip...)
	}
	return out
}

// Clone returns an interface with independent bookkeeping over the same
// edge handles.
func (in *Interface) Clone() *Interface {
	return &Interface{
		refs:   slices.Clone(in.refs),
		flip:   slices.Clone(in.flip),
		ruffle: slices.Clone(in.ruffle),
	}
}

func (in *Interface) String() string {
	names := make([]string, len(in.refs))
	for i, r := range in.refs {
		names[i] = r.Panel.Name
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Interface%v", names)
	if seq, err := in.OrientedEdges(); err == nil {
		b.WriteString(": " + seq.String())
	} else {
		b.WriteString(": " + err.Error())
	}
	return b.String()
}
