package geom

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EdgeID is the opaque identity of an edge. Copies get a new ID.
type EdgeID string

func newEdgeID() EdgeID {
	return EdgeID(uuid.NewString())
}

// Short returns the first eight characters of the ID, for logs.
func (id EdgeID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// CurveKind selects the Bezier degree of a curved edge.
type CurveKind int

const (
	CurveQuadratic CurveKind = iota // one control point
	CurveCubic                      // two control points
)

func (k CurveKind) String() string {
	switch k {
	case CurveQuadratic:
		return "quadratic"
	case CurveCubic:
		return "cubic"
	default:
		return "unknown"
	}
}

// controlCount is the number of control points the kind requires.
func (k CurveKind) controlCount() int {
	if k == CurveCubic {
		return 2
	}
	return 1
}

// ParseCurveKind is the inverse of CurveKind.String.
func ParseCurveKind(s string) (CurveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quadratic":
		return CurveQuadratic, nil
	case "cubic":
		return CurveCubic, nil
	default:
		return 0, fmt.Errorf("unknown curve kind %q", s)
	}
}

// Curvature holds Bezier control points relative to the edge chord:
// X is the fraction along start->end, Y the fraction of chord length along
// the chord rotated 90 degrees counter-clockwise. Relative control points
// follow the endpoints when vertices move.
type Curvature struct {
	Kind    CurveKind
	Control []Point2D
}

func (c *Curvature) copy() *Curvature {
	if c == nil {
		return nil
	}
	return &Curvature{Kind: c.Kind, Control: append([]Point2D(nil), c.Control...)}
}

// Edge is an atomic boundary segment between two shared vertices.
type Edge struct {
	ID      EdgeID
	Start   *Vertex
	End     *Vertex
	Curve   *Curvature // nil for a straight edge
	Flipped bool       // set when the edge was reversed for orientation
}

// NewEdge creates a straight edge between existing vertices.
func NewEdge(start, end *Vertex) *Edge {
	return &Edge{ID: newEdgeID(), Start: start, End: end}
}

// Line creates a straight edge between fresh vertices at a and b.
func Line(a, b Point2D) *Edge {
	return NewEdge(&Vertex{a}, &Vertex{b})
}

// NewCurveEdge creates a Bezier edge with control points given relative to
// the chord.
func NewCurveEdge(start, end *Vertex, kind CurveKind, control ...Point2D) (*Edge, error) {
	if len(control) != kind.controlCount() {
		return nil, fmt.Errorf("%s curve needs %d control points, got %d", kind, kind.controlCount(), len(control))
	}
	e := NewEdge(start, end)
	e.Curve = &Curvature{Kind: kind, Control: append([]Point2D(nil), control...)}
	return e, nil
}

// IsCurve reports whether the edge carries curvature.
func (e *Edge) IsCurve() bool {
	return e.Curve != nil && len(e.Curve.Control) > 0
}

// ControlPoints returns the absolute Bezier control polygon, endpoints
// included. A straight edge yields just its two endpoints.
func (e *Edge) ControlPoints() []Point2D {
	return controlPolygon(e.Start.Point2D, e.End.Point2D, e.Curve)
}

// PointAt evaluates the edge at parameter t in [0, 1].
func (e *Edge) PointAt(t float64) Point2D {
	return bezierPoint(e.ControlPoints(), t)
}

// Sample returns n+1 points evenly spaced in parameter along the edge.
func (e *Edge) Sample(n int) []Point2D {
	return Sample(e.Start.Point2D, e.End.Point2D, e.Curve, n)
}

// Length returns the chord length for straight edges and a sampled arc
// length for curves.
func (e *Edge) Length() float64 {
	if !e.IsCurve() {
		return e.Start.Dist(e.End.Point2D)
	}
	return polylineLength(e.Sample(arcSamples))
}

// Midpoint returns the point halfway along the edge parameter.
func (e *Edge) Midpoint() Point2D {
	if !e.IsCurve() {
		return e.Start.Lerp(e.End.Point2D, 0.5)
	}
	return e.PointAt(0.5)
}

// IsDegenerate reports whether the endpoints coincide.
func (e *Edge) IsDegenerate() bool {
	return e.Start.Near(e.End.Point2D)
}

// Reverse swaps the endpoints in place and toggles Flipped. Relative control
// points are mirrored so the curve keeps its shape.
func (e *Edge) Reverse() *Edge {
	e.Start, e.End = e.End, e.Start
	e.Flipped = !e.Flipped
	if e.Curve != nil {
		n := len(e.Curve.Control)
		rev := make([]Point2D, n)
		for i, cp := range e.Curve.Control {
			rev[n-1-i] = Point2D{X: 1 - cp.X, Y: -cp.Y}
		}
		e.Curve.Control = rev
	}
	return e
}

// Copy returns an edge with a fresh identity and fresh vertices.
func (e *Edge) Copy() *Edge {
	return e.copyWith(&Vertex{e.Start.Point2D}, &Vertex{e.End.Point2D})
}

func (e *Edge) copyWith(start, end *Vertex) *Edge {
	return &Edge{
		ID:      newEdgeID(),
		Start:   start,
		End:     end,
		Curve:   e.Curve.copy(),
		Flipped: e.Flipped,
	}
}

func (e *Edge) String() string {
	if e.IsCurve() {
		return fmt.Sprintf("%s%v->%v", e.Curve.Kind, e.Start.Point2D, e.End.Point2D)
	}
	return fmt.Sprintf("%v->%v", e.Start.Point2D, e.End.Point2D)
}
