package geom

import (
	"fmt"
	"math"
)

// FromVerts builds a chain of straight edges through pts. Consecutive edges
// share vertices. With loop set, a closing edge back to pts[0] is appended.
func FromVerts(loop bool, pts ...Point2D) (*EdgeSequence, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 points, got %d", ErrDegenerate, len(pts))
	}
	verts := make([]*Vertex, len(pts))
	for i, p := range pts {
		verts[i] = &Vertex{p}
	}
	seq := &EdgeSequence{}
	for i := 1; i < len(verts); i++ {
		seq.edges = append(seq.edges, NewEdge(verts[i-1], verts[i]))
	}
	if loop {
		seq.edges = append(seq.edges, NewEdge(verts[len(verts)-1], verts[0]))
	}
	return seq, nil
}

// FromFractions splits the segment start->end into straight edges whose
// lengths follow frac. The absolute fractions must sum to 1.
func FromFractions(start, end Point2D, frac ...float64) (*EdgeSequence, error) {
	if len(frac) == 0 {
		frac = []float64{1}
	}
	var sum float64
	for _, f := range frac {
		sum += math.Abs(f)
	}
	if math.Abs(sum-1) > 1e-4 {
		return nil, fmt.Errorf("edge fractions sum to %.5f, want 1", sum)
	}
	vec := end.Sub(start)
	pts := []Point2D{start}
	for _, f := range frac[:len(frac)-1] {
		pts = append(pts, pts[len(pts)-1].Add(vec.Scale(math.Abs(f))))
	}
	pts = append(pts, end)
	return FromVerts(false, pts...)
}

// SideWithCut returns start->end with extra vertices placed at the
// startCut and endCut fractions, so only part of a long side can be stitched.
func SideWithCut(start, end Point2D, startCut, endCut float64) (*EdgeSequence, error) {
	vec := end.Sub(start)
	pts := []Point2D{start}
	if startCut > 0 {
		pts = append(pts, start.Add(vec.Scale(startCut)))
	}
	if endCut > 0 {
		pts = append(pts, end.Sub(vec.Scale(endCut)))
	}
	pts = append(pts, end)
	return FromVerts(false, pts...)
}

// DartShape returns the two sides of a triangular dart of the given width.
// Exactly one of sideLen and depth should be positive; depth wins if both are.
func DartShape(width, sideLen, depth float64) (*EdgeSequence, error) {
	if sideLen <= 0 && depth <= 0 {
		return nil, fmt.Errorf("%w: dart needs a side length or a depth", ErrDegenerate)
	}
	if depth <= 0 {
		if width/2 > sideLen {
			return nil, fmt.Errorf("%w: dart (w=%.2f, side=%.2f) is not a valid triangle", ErrDegenerate, width, sideLen)
		}
		depth = math.Sqrt(sideLen*sideLen - width*width/4)
	}
	return FromVerts(false, Pt(0, 0), Pt(width/2, -depth), Pt(width, 0))
}

// CurveThrough returns a quadratic edge from start to end that passes
// through target at its parameter midpoint.
func CurveThrough(start, end *Vertex, target Point2D) (*Edge, error) {
	rel, err := toRelative(start.Point2D, end.Point2D, target)
	if err != nil {
		return nil, err
	}
	return NewCurveEdge(start, end, CurveQuadratic, Pt(2*rel.X-0.5, 2*rel.Y))
}

// toRelative expresses p in the chord frame used by Curvature.
func toRelative(start, end, p Point2D) (Point2D, error) {
	chord := end.Sub(start)
	l2 := chord.Dot(chord)
	if l2 <= Tolerance*Tolerance {
		return Point2D{}, fmt.Errorf("%w: chord has zero length", ErrDegenerate)
	}
	d := p.Sub(start)
	return Point2D{X: d.Dot(chord) / l2, Y: d.Dot(chord.Perp()) / l2}, nil
}
