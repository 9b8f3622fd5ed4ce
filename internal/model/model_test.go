package model

import (
	"math"
	"testing"
)

func square(size float64) PanelSpec {
	return PanelSpec{
		Vertices: []Point2D{{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size}},
		Edges: []EdgeSpec{
			{Endpoints: [2]int{0, 1}},
			{Endpoints: [2]int{1, 2}},
			{Endpoints: [2]int{2, 3}},
			{Endpoints: [2]int{3, 0}},
		},
	}
}

func TestOutlineBoundingBox(t *testing.T) {
	o := Outline{{X: 2, Y: -1}, {X: 5, Y: 3}, {X: -1, Y: 0}}
	min, max := o.BoundingBox()
	if min.X != -1 || min.Y != -1 || max.X != 5 || max.Y != 3 {
		t.Errorf("unexpected bounding box %v %v", min, max)
	}
}

func TestOutlineAreaAndRotate(t *testing.T) {
	o := Outline{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 2}}
	if a := o.Area(); a != 8 {
		t.Errorf("expected area 8, got %f", a)
	}
	r := o.Rotate90()
	min, max := r.BoundingBox()
	if max.X-min.X != 2 || max.Y-min.Y != 4 {
		t.Errorf("expected 2x4 after rotation, got %fx%f", max.X-min.X, max.Y-min.Y)
	}
}

func TestPanelSpecOutlineStraight(t *testing.T) {
	o, err := square(10).Outline(16)
	if err != nil {
		t.Fatalf("Outline error: %v", err)
	}
	if len(o) != 4 {
		t.Errorf("expected 4 points for straight edges, got %d", len(o))
	}
}

func TestPanelSpecOutlineCurved(t *testing.T) {
	ps := square(10)
	ps.Edges[2].Curvature = &CurvatureSpec{Type: "quadratic", Params: []Point2D{{X: 0.5, Y: -0.5}}}

	o, err := ps.Outline(8)
	if err != nil {
		t.Fatalf("Outline error: %v", err)
	}
	if len(o) != 3+8 {
		t.Errorf("expected 11 points, got %d", len(o))
	}
	_, max := o.BoundingBox()
	if math.Abs(max.Y-12.5) > 1e-9 {
		t.Errorf("expected curve to bulge to y=12.5, got %f", max.Y)
	}
}

func TestPanelSpecOutlineBadCurve(t *testing.T) {
	ps := square(10)
	ps.Edges[0].Curvature = &CurvatureSpec{Type: "spline"}
	if _, err := ps.Outline(8); err == nil {
		t.Error("expected error for unknown curve type")
	}
}

func TestPatternAddPanelKeepsOrder(t *testing.T) {
	p := NewPattern("skirt")
	p.AddPanel("front", square(10))
	p.AddPanel("back", square(10))
	p.AddPanel("front", square(20))

	names := p.PanelNames()
	if len(names) != 2 || names[0] != "front" || names[1] != "back" {
		t.Errorf("unexpected order %v", names)
	}
	if p.Panels["front"].Vertices[1].X != 20 {
		t.Error("expected front to be replaced")
	}
}

func TestPatternPanelNamesFallsBackToSorted(t *testing.T) {
	p := Pattern{Panels: map[string]PanelSpec{"b": square(1), "a": square(1)}}
	names := p.PanelNames()
	if names[0] != "a" || names[1] != "b" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestPatternValidate(t *testing.T) {
	p := NewPattern("skirt")
	p.AddPanel("front", square(10))
	p.AddPanel("back", square(10))
	p.Stitches = append(p.Stitches, StitchSpec{{Panel: "front", Edge: 1}, {Panel: "back", Edge: 3}})
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p.Stitches = append(p.Stitches, StitchSpec{{Panel: "front", Edge: 4}, {Panel: "back", Edge: 3}})
	if err := p.Validate(); err == nil {
		t.Error("expected error for edge out of range")
	}

	p.Stitches = []StitchSpec{{{Panel: "sleeve", Edge: 0}, {Panel: "back", Edge: 3}}}
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown panel")
	}
}

func TestStitchSummaryMismatch(t *testing.T) {
	s := StitchSummary{LengthA: 100, LengthB: 98}
	if math.Abs(s.Mismatch()-0.02) > 1e-12 {
		t.Errorf("expected 0.02, got %f", s.Mismatch())
	}
	if (StitchSummary{}).Mismatch() != 0 {
		t.Error("expected zero mismatch for empty summary")
	}
}

func TestMarkerEfficiency(t *testing.T) {
	m := Marker{
		FabricWidth: 100,
		Length:      50,
		Placements: []Placement{
			{Piece: Piece{Label: "a", Width: 50, Height: 50}},
			{Piece: Piece{Label: "b", Width: 20, Height: 10, Outline: Outline{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 10}}}},
		},
	}
	if m.UsedArea() != 2500+100 {
		t.Errorf("expected used area 2600, got %f", m.UsedArea())
	}
	if math.Abs(m.Efficiency()-52) > 1e-9 {
		t.Errorf("expected 52%% efficiency, got %f", m.Efficiency())
	}
}

func TestPlacementRotated(t *testing.T) {
	p := Placement{
		Piece:   Piece{Width: 30, Height: 10, Outline: Outline{{X: 0, Y: 0}, {X: 30, Y: 0}, {X: 30, Y: 10}, {X: 0, Y: 10}}},
		X:       5,
		Y:       7,
		Rotated: true,
	}
	if p.PlacedWidth() != 10 || p.PlacedHeight() != 30 {
		t.Errorf("unexpected placed size %fx%f", p.PlacedWidth(), p.PlacedHeight())
	}
	min, max := p.PlacedOutline().BoundingBox()
	if min.X != 5 || min.Y != 7 || max.X != 15 || max.Y != 37 {
		t.Errorf("unexpected placed outline bounds %v %v", min, max)
	}
}
