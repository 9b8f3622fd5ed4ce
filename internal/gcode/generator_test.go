package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/StitchKit/internal/model"
)

func squarePiece(id string, size float64) model.Piece {
	return model.Piece{
		ID:     id,
		Label:  id,
		Width:  size,
		Height: size,
		Outline: model.Outline{
			{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
		},
	}
}

func testMarker() (model.Pattern, model.Marker) {
	p := model.NewPattern("test")
	m := model.Marker{
		FabricWidth: 100,
		Length:      20,
		Placements:  []model.Placement{{Piece: squarePiece("front", 10), X: 5, Y: 5}},
	}
	return p, m
}

func TestGenerate_SquareInMillimetres(t *testing.T) {
	p, m := testMarker()
	code := New(DefaultSettings()).Generate(p, m)

	for _, want := range []string{
		"; StitchKit cut file: test",
		"; Fabric: 1000.0 x 200.0 mm",
		"; --- Piece 1: front (10.0 x 10.0) ---",
		"G0 X50.00 Y50.00\n",
		"G1 Z-1.00 F1500.00\n",
		"G1 X150.00 Y50.00 F6000.00\n",
		"G1 X150.00 Y150.00\n",
		"M2\n",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(code, "M3") {
		t.Error("generic profile should not switch a knife on")
	}

	s := Summarize(Parse(code))
	if math.Abs(s.CutLength-400) > 1e-6 {
		t.Errorf("expected 400mm of cut, got %.3f", s.CutLength)
	}
	if s.Plunges != 1 {
		t.Errorf("expected 1 plunge, got %d", s.Plunges)
	}
}

func TestGenerate_ClosesOutline(t *testing.T) {
	p, m := testMarker()
	moves := Parse(New(DefaultSettings()).Generate(p, m))

	var last Move
	for _, mv := range moves {
		if mv.Type == MoveFeed {
			last = mv
		}
	}
	if last.ToX != 50 || last.ToY != 50 {
		t.Errorf("expected the cut to end at its start (50,50), got (%.2f,%.2f)", last.ToX, last.ToY)
	}
}

func TestGenerate_SeamAllowance(t *testing.T) {
	p, m := testMarker()
	s := DefaultSettings()
	s.SeamAllowance = 1
	code := New(s).Generate(p, m)

	if !strings.Contains(code, "; Seam allowance: 1.00 cm") {
		t.Error("expected the seam allowance in the header")
	}
	if !strings.Contains(code, "G0 X40.00 Y40.00\n") {
		t.Error("expected the cut to start 1cm outside the corner")
	}
	if got := Summarize(Parse(code)).CutLength; math.Abs(got-480) > 1e-6 {
		t.Errorf("expected 480mm of cut, got %.3f", got)
	}
}

func TestGenerate_RotatedPiece(t *testing.T) {
	piece := model.Piece{
		ID:      "band",
		Label:   "band",
		Width:   10,
		Height:  4,
		Outline: model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 4}, {X: 0, Y: 4}},
	}
	m := model.Marker{FabricWidth: 50, Length: 10, Placements: []model.Placement{{Piece: piece, Rotated: true}}}
	code := New(DefaultSettings()).Generate(model.NewPattern("r"), m)

	if !strings.Contains(code, "[rotated]") {
		t.Error("expected rotated marker in the piece comment")
	}
	var maxX, maxY float64
	for _, mv := range Parse(code) {
		if mv.Type == MoveFeed {
			maxX, maxY = math.Max(maxX, mv.ToX), math.Max(maxY, mv.ToY)
		}
	}
	if maxX != 40 || maxY != 100 {
		t.Errorf("expected a 40 x 100 mm cut, got %.1f x %.1f", maxX, maxY)
	}
}

func TestGenerate_UnplacedWarning(t *testing.T) {
	p, m := testMarker()
	m.Unplaced = []model.Piece{squarePiece("cape", 400)}
	code := New(DefaultSettings()).Generate(p, m)
	if !strings.Contains(code, "; WARNING: cape was not placed and is not cut") {
		t.Error("expected a warning for the unplaced piece")
	}
}

func TestGenerate_LinuxCNCProfile(t *testing.T) {
	p, m := testMarker()
	s := DefaultSettings()
	s.Profile = "LinuxCNC"
	code := New(s).Generate(p, m)

	for _, want := range []string{"( Profile: LinuxCNC)", "M3\n", "M5\n", "G64 P0.05\n", "G0 X50.000 Y50.000\n"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if got := Summarize(Parse(code)).CutLength; math.Abs(got-400) > 1e-6 {
		t.Errorf("comments should not disturb parsing, cut length %.3f", got)
	}
}

func TestGetProfile_Fallback(t *testing.T) {
	if got := GetProfile("Grbl").Name; got != "Grbl" {
		t.Errorf("expected Grbl, got %s", got)
	}
	if got := GetProfile("nope").Name; got != "Generic" {
		t.Errorf("expected fallback to Generic, got %s", got)
	}
	if names := ProfileNames(); len(names) != len(Profiles) || names[0] != "Generic" {
		t.Errorf("unexpected profile names %v", names)
	}
}

func TestOffsetOutline_Winding(t *testing.T) {
	ccw := model.Outline{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	cw := model.Outline{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}

	for name, o := range map[string]model.Outline{"ccw": ccw, "cw": cw} {
		lo, hi := offsetOutline(o, 1).BoundingBox()
		if math.Abs(lo.X+1) > 1e-9 || math.Abs(lo.Y+1) > 1e-9 || math.Abs(hi.X-11) > 1e-9 || math.Abs(hi.Y-11) > 1e-9 {
			t.Errorf("%s: expected bbox (-1,-1)-(11,11), got %v-%v", name, lo, hi)
		}
	}
}

func TestUnitScale(t *testing.T) {
	tests := map[string]float64{"cm": 10, "mm": 1, "in": 25.4, "IN": 25.4, "": 10}
	for units, want := range tests {
		if got := UnitScale(units); got != want {
			t.Errorf("UnitScale(%q) = %v, want %v", units, got, want)
		}
	}
}
