// Package geom provides the 2D boundary primitives panels are built from:
// shared vertices, straight and Bezier edges, and ordered edge sequences.
package geom

import (
	"fmt"
	"math"
)

// Tolerance is the distance below which two points are considered coincident.
const Tolerance = 1e-4

// Point2D represents a 2D coordinate in the panel's local frame.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

func (p Point2D) Add(q Point2D) Point2D { return Point2D{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point2D) Sub(q Point2D) Point2D { return Point2D{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point2D) Scale(s float64) Point2D { return Point2D{X: p.X * s, Y: p.Y * s} }
func (p Point2D) Dot(q Point2D) float64 { return p.X*q.X + p.Y*q.Y }
func (p Point2D) Len() float64 { return math.Hypot(p.X, p.Y) }
func (p Point2D) Dist(q Point2D) float64 { return p.Sub(q).Len() }
func (p Point2D) Lerp(q Point2D, t float64) Point2D {
	return Point2D{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Perp returns p rotated 90 degrees counter-clockwise.
func (p Point2D) Perp() Point2D { return Point2D{X: -p.Y, Y: p.X} }

// Near reports whether p and q are within Tolerance of each other.
func (p Point2D) Near(q Point2D) bool { return p.Dist(q) <= Tolerance }

func (p Point2D) String() string { return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y) }

// Vertex is a mutable point shared by the edges that meet at it.
// Two vertices are the same vertex only if they are the same pointer;
// equal coordinates do not make them interchangeable.
type Vertex struct {
	Point2D
}

// NewVertex allocates a vertex at (x, y).
func NewVertex(x, y float64) *Vertex {
	return &Vertex{Point2D{X: x, Y: y}}
}

// Set moves the vertex, affecting every edge that shares it.
func (v *Vertex) Set(p Point2D) {
	v.Point2D = p
}
