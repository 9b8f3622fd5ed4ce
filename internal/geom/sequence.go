package geom

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// EdgeSequence is an ordered, mutable list of edges. It may be an open
// path, a closed loop, or an arbitrary selection of edges.
type EdgeSequence struct {
	edges []*Edge
}

// NewEdgeSequence wraps the given edges without copying them.
func NewEdgeSequence(edges ...*Edge) *EdgeSequence {
	return &EdgeSequence{edges: append([]*Edge(nil), edges...)}
}

// Len returns the number of edges.
func (s *EdgeSequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.edges)
}

// At returns the edge at index i. Negative indices count from the end.
// It panics if i is out of range, like a slice index.
func (s *EdgeSequence) At(i int) *Edge {
	if i < 0 {
		i += len(s.edges)
	}
	return s.edges[i]
}

// Edges returns the edges in order. The slice is a copy; the edges are not.
func (s *EdgeSequence) Edges() []*Edge {
	return append([]*Edge(nil), s.edges...)
}

// Append adds edges to the end of the sequence.
func (s *EdgeSequence) Append(edges ...*Edge) *EdgeSequence {
	s.edges = append(s.edges, edges...)
	return s
}

// AppendSequence adds all edges of other to the end of the sequence.
func (s *EdgeSequence) AppendSequence(other *EdgeSequence) *EdgeSequence {
	if other != nil {
		s.edges = append(s.edges, other.edges...)
	}
	return s
}

// Insert places edges before index i.
func (s *EdgeSequence) Insert(i int, edges ...*Edge) error {
	if i < 0 || i > len(s.edges) {
		return fmt.Errorf("%w: insert index %d not in [0, %d]", ErrIndexOutOfRange, i, len(s.edges))
	}
	s.edges = slices.Insert(s.edges, i, edges...)
	return nil
}

// Substitute replaces the edge at index i with one or more new edges.
// Negative indices count from the end.
func (s *EdgeSequence) Substitute(i int, news ...*Edge) error {
	if len(news) == 0 {
		return errors.New("substitute: at least one replacement edge is required")
	}
	if i < 0 {
		i += len(s.edges)
	}
	if i < 0 || i >= len(s.edges) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.edges))
	}
	s.edges = slices.Replace(s.edges, i, i+1, news...)
	return nil
}

// SubstituteEdge replaces orig, found by identity, with the new edges.
func (s *EdgeSequence) SubstituteEdge(orig *Edge, news ...*Edge) error {
	i := s.Index(orig)
	if i < 0 {
		return fmt.Errorf("%w: edge %s is not in the sequence", ErrUnresolved, orig.ID.Short())
	}
	return s.Substitute(i, news...)
}

// Index returns the position of e by identity, or -1.
func (s *EdgeSequence) Index(e *Edge) int {
	if e == nil {
		return -1
	}
	return s.IndexOf(e.ID)
}

// IndexOf returns the position of the edge with the given ID, or -1.
func (s *EdgeSequence) IndexOf(id EdgeID) int {
	return slices.IndexFunc(s.edges, func(e *Edge) bool { return e.ID == id })
}

// CloseLoop appends a straight edge from the last end back to the first
// start, sharing both vertices. It does nothing if the loop is already closed.
func (s *EdgeSequence) CloseLoop() *EdgeSequence {
	if len(s.edges) == 0 {
		return s
	}
	first, last := s.edges[0], s.edges[len(s.edges)-1]
	if last.End.Near(first.Start.Point2D) {
		return s
	}
	s.edges = append(s.edges, NewEdge(last.End, first.Start))
	return s
}

// Reverse reverses the order of edges and the direction of each edge.
func (s *EdgeSequence) Reverse() *EdgeSequence {
	slices.Reverse(s.edges)
	for _, e := range s.edges {
		e.Reverse()
	}
	return s
}

// Copy returns a sequence of copied edges. Vertices shared between edges of
// the original are shared between the corresponding copies.
func (s *EdgeSequence) Copy() *EdgeSequence {
	verts := make(map[*Vertex]*Vertex)
	clone := func(v *Vertex) *Vertex {
		if c, ok := verts[v]; ok {
			return c
		}
		c := &Vertex{v.Point2D}
		verts[v] = c
		return c
	}
	out := &EdgeSequence{edges: make([]*Edge, len(s.edges))}
	for i, e := range s.edges {
		out.edges[i] = e.copyWith(clone(e.Start), clone(e.End))
	}
	return out
}

// Slice returns a view over edges [lo, hi). The edges are shared, so
// geometric changes through the view affect the original.
func (s *EdgeSequence) Slice(lo, hi int) *EdgeSequence {
	return &EdgeSequence{edges: append([]*Edge(nil), s.edges[lo:hi]...)}
}

// Verts returns every vertex once, in first-seen order.
func (s *EdgeSequence) Verts() []*Vertex {
	seen := make(map[*Vertex]bool)
	var verts []*Vertex
	for _, e := range s.edges {
		for _, v := range []*Vertex{e.Start, e.End} {
			if !seen[v] {
				seen[v] = true
				verts = append(verts, v)
			}
		}
	}
	return verts
}

// Length returns the total length of all edges.
func (s *EdgeSequence) Length() float64 {
	var total float64
	for _, e := range s.edges {
		total += e.Length()
	}
	return total
}

// IsChained reports whether each edge ends where the next one starts.
func (s *EdgeSequence) IsChained() bool {
	return s.brokenJoint() < 0
}

// IsClosed reports whether the sequence is chained and the last edge ends
// where the first one starts.
func (s *EdgeSequence) IsClosed() bool {
	if len(s.edges) == 0 || !s.IsChained() {
		return false
	}
	return s.edges[len(s.edges)-1].End.Near(s.edges[0].Start.Point2D)
}

func (s *EdgeSequence) brokenJoint() int {
	for i := 0; i+1 < len(s.edges); i++ {
		if !s.edges[i].End.Near(s.edges[i+1].Start.Point2D) {
			return i
		}
	}
	return -1
}

// Validate checks contiguity, and the wraparound joint when closed is set.
func (s *EdgeSequence) Validate(closed bool) error {
	if len(s.edges) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrTopology)
	}
	if i := s.brokenJoint(); i >= 0 {
		return fmt.Errorf("%w: edge %d ends at %v but edge %d starts at %v",
			ErrTopology, i, s.edges[i].End.Point2D, i+1, s.edges[i+1].Start.Point2D)
	}
	if closed {
		first, last := s.edges[0], s.edges[len(s.edges)-1]
		if !last.End.Near(first.Start.Point2D) {
			return fmt.Errorf("%w: loop is open, last edge ends at %v but first starts at %v",
				ErrTopology, last.End.Point2D, first.Start.Point2D)
		}
	}
	return nil
}

// Degenerate returns the indices of zero-length edges.
func (s *EdgeSequence) Degenerate() []int {
	var idx []int
	for i, e := range s.edges {
		if e.IsDegenerate() {
			idx = append(idx, i)
		}
	}
	return idx
}

// chord returns the endpoints of the path the sequence traces, accepting
// edges listed in either forward or backward chain order.
func (s *EdgeSequence) chord() (Point2D, Point2D, error) {
	n := len(s.edges)
	if n == 0 {
		return Point2D{}, Point2D{}, fmt.Errorf("%w: empty sequence", ErrTopology)
	}
	if s.IsChained() {
		return s.edges[0].Start.Point2D, s.edges[n-1].End.Point2D, nil
	}
	for i := 0; i+1 < n; i++ {
		if !s.edges[i].Start.Near(s.edges[i+1].End.Point2D) {
			return Point2D{}, Point2D{}, fmt.Errorf("%w: edges do not form a chain", ErrTopology)
		}
	}
	return s.edges[n-1].Start.Point2D, s.edges[0].End.Point2D, nil
}

// Extend scales the sequence along the line from its chain start to its
// chain end by factor, keeping the chain start fixed. Vertex offsets
// perpendicular to that line are preserved.
func (s *EdgeSequence) Extend(factor float64) error {
	start, end, err := s.chord()
	if err != nil {
		return err
	}
	dir := end.Sub(start)
	l := dir.Len()
	if l <= Tolerance {
		return fmt.Errorf("%w: cannot extend a sequence whose ends coincide", ErrDegenerate)
	}
	dir = dir.Scale(1 / l)
	for _, v := range s.Verts() {
		along := v.Sub(start).Dot(dir)
		v.Set(v.Sub(dir.Scale(along * (1 - factor))))
	}
	return nil
}

// Translate moves every vertex by d.
func (s *EdgeSequence) Translate(d Point2D) *EdgeSequence {
	for _, v := range s.Verts() {
		v.Set(v.Add(d))
	}
	return s
}

// ReflectX mirrors the sequence across the Y axis.
func (s *EdgeSequence) ReflectX() *EdgeSequence {
	for _, v := range s.Verts() {
		v.X = -v.X
	}
	for _, e := range s.edges {
		if e.Curve == nil {
			continue
		}
		for i := range e.Curve.Control {
			e.Curve.Control[i].Y = -e.Curve.Control[i].Y
		}
	}
	return s
}

func (s *EdgeSequence) String() string {
	parts := make([]string, len(s.edges))
	for i, e := range s.edges {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
