package model

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/piwi3910/StitchKit/internal/geom"
)

// Point2D represents a 2D coordinate in pattern units.
type Point2D = geom.Point2D

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Rotate90 rotates the outline a quarter turn counter-clockwise about the
// origin.
func (o Outline) Rotate90() Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: -p.Y, Y: p.X}
	}
	return result
}

// Area returns the unsigned polygon area.
func (o Outline) Area() float64 {
	var a float64
	for i := range o {
		j := (i + 1) % len(o)
		a += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	if a < 0 {
		a = -a
	}
	return a / 2
}

// Vec3 is a 3D vector as stored in pattern files.
type Vec3 [3]float64

// CurvatureSpec stores Bezier control points relative to the edge chord.
type CurvatureSpec struct {
	Type   string    `json:"type"` // "quadratic" or "cubic"
	Params []Point2D `json:"params"`
}

// EdgeSpec is one outline edge, referencing panel vertices by index.
type EdgeSpec struct {
	Endpoints [2]int         `json:"endpoints"`
	Curvature *CurvatureSpec `json:"curvature,omitempty"`
}

// PanelSpec is the serialised form of a panel: vertices relative to its
// first vertex, and the 3D placement of that vertex.
type PanelSpec struct {
	Translation Vec3       `json:"translation"`
	Rotation    Vec3       `json:"rotation"` // intrinsic XYZ Euler angles, degrees
	Vertices    []Point2D  `json:"vertices"`
	Edges       []EdgeSpec `json:"edges"`
}

// Outline linearises the panel boundary, sampling each curved edge with
// the given number of segments.
func (ps PanelSpec) Outline(samples int) (Outline, error) {
	var out Outline
	for i, e := range ps.Edges {
		a, b := e.Endpoints[0], e.Endpoints[1]
		if a < 0 || a >= len(ps.Vertices) || b < 0 || b >= len(ps.Vertices) {
			return nil, fmt.Errorf("edge %d: endpoints %v out of range", i, e.Endpoints)
		}
		var curve *geom.Curvature
		if e.Curvature != nil {
			kind, err := geom.ParseCurveKind(e.Curvature.Type)
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			curve = &geom.Curvature{Kind: kind, Control: e.Curvature.Params}
		}
		pts := geom.Sample(ps.Vertices[a], ps.Vertices[b], curve, samples)
		out = append(out, pts[:len(pts)-1]...)
	}
	return out, nil
}

// StitchSide names one edge of a panel.
type StitchSide struct {
	Panel string `json:"panel"`
	Edge  int    `json:"edge"`
}

// StitchSpec connects two panel edges.
type StitchSpec [2]StitchSide

// Pattern is the assembled, serialisable sewing pattern.
type Pattern struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Garment    string               `json:"garment,omitempty"`
	Units      string               `json:"units"`
	PanelOrder []string             `json:"panel_order"`
	Panels     map[string]PanelSpec `json:"panels"`
	Stitches   []StitchSpec         `json:"stitches"`
}

// NewPattern creates an empty pattern.
func NewPattern(name string) Pattern {
	return Pattern{
		ID:       uuid.New().String()[:8],
		Name:     name,
		Units:    "cm",
		Panels:   map[string]PanelSpec{},
		Stitches: []StitchSpec{},
	}
}

// AddPanel stores a panel, keeping insertion order. Adding an existing
// name replaces it in place.
func (p *Pattern) AddPanel(name string, ps PanelSpec) {
	if _, ok := p.Panels[name]; !ok {
		p.PanelOrder = append(p.PanelOrder, name)
	}
	p.Panels[name] = ps
}

// PanelNames returns panel names in insertion order, falling back to sorted
// order for patterns written without one.
func (p Pattern) PanelNames() []string {
	if len(p.PanelOrder) == len(p.Panels) {
		return append([]string(nil), p.PanelOrder...)
	}
	names := make([]string, 0, len(p.Panels))
	for n := range p.Panels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every edge and stitch reference resolves.
func (p Pattern) Validate() error {
	for name, ps := range p.Panels {
		if len(ps.Edges) < 2 {
			return fmt.Errorf("panel %s: needs at least 2 edges", name)
		}
		for i, e := range ps.Edges {
			for _, v := range e.Endpoints {
				if v < 0 || v >= len(ps.Vertices) {
					return fmt.Errorf("panel %s edge %d: vertex %d out of range", name, i, v)
				}
			}
		}
	}
	for i, s := range p.Stitches {
		for _, side := range s {
			ps, ok := p.Panels[side.Panel]
			if !ok {
				return fmt.Errorf("stitch %d: unknown panel %q", i, side.Panel)
			}
			if side.Edge < 0 || side.Edge >= len(ps.Edges) {
				return fmt.Errorf("stitch %d: panel %s has no edge %d", i, side.Panel, side.Edge)
			}
		}
	}
	return nil
}

// StitchSummary describes one declared seam after assembly.
type StitchSummary struct {
	Index     int     `json:"index"`
	SideA     string  `json:"side_a"` // panel names along side A
	SideB     string  `json:"side_b"`
	EdgePairs int     `json:"edge_pairs"`
	LengthA   float64 `json:"length_a"` // stitched length, gathering removed
	LengthB   float64 `json:"length_b"`
	FabricA   float64 `json:"fabric_a"` // raw edge length
	FabricB   float64 `json:"fabric_b"`
	Reversed  bool    `json:"reversed"` // side B was reversed to match side A
	Valid     bool    `json:"valid"`
}

// Mismatch returns the relative length difference of the two sides.
func (s StitchSummary) Mismatch() float64 {
	longest := max(s.LengthA, s.LengthB)
	if longest == 0 {
		return 0
	}
	d := s.LengthA - s.LengthB
	if d < 0 {
		d = -d
	}
	return d / longest
}
