package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/model"
)

func testSettings() model.LayoutSettings {
	s := model.DefaultLayoutSettings()
	s.FabricWidth = 150
	s.PanelGap = 2
	return s
}

func box(label string, w, h float64) model.Piece {
	return model.Piece{
		ID: label, Label: label, Width: w, Height: h,
		Outline: model.Outline{geom.Pt(0, 0), geom.Pt(w, 0), geom.Pt(w, h), geom.Pt(0, h)},
	}
}

func assertNoOverlap(t *testing.T, m model.Marker, gap float64) {
	t.Helper()
	for i, a := range m.Placements {
		assert.GreaterOrEqual(t, a.X, -0.001, "%s off the left edge", a.Piece.Label)
		assert.LessOrEqual(t, a.X+a.PlacedWidth(), m.FabricWidth+0.001, "%s off the right edge", a.Piece.Label)
		assert.LessOrEqual(t, a.Y+a.PlacedHeight(), m.Length+0.001)
		for _, b := range m.Placements[i+1:] {
			apart := a.X+a.PlacedWidth()+gap <= b.X+0.001 || b.X+b.PlacedWidth()+gap <= a.X+0.001 ||
				a.Y+a.PlacedHeight()+gap <= b.Y+0.001 || b.Y+b.PlacedHeight()+gap <= a.Y+0.001
			assert.True(t, apart, "%s and %s closer than the gap", a.Piece.Label, b.Piece.Label)
		}
	}
}

func TestOptimize_SinglePiece(t *testing.T) {
	m := New(testSettings()).Optimize([]model.Piece{box("A", 40, 60)})

	require.Len(t, m.Placements, 1)
	assert.Empty(t, m.Unplaced)
	assert.Equal(t, 0.0, m.Placements[0].X)
	assert.Equal(t, 0.0, m.Placements[0].Y)
	assert.InDelta(t, 60.0, m.Length, 1e-9)
	assert.Equal(t, 150.0, m.FabricWidth)
}

func TestOptimize_SideBySideThenNextRow(t *testing.T) {
	pieces := []model.Piece{box("A", 70, 50), box("B", 70, 50), box("C", 70, 50)}
	m := New(testSettings()).Optimize(pieces)

	require.Len(t, m.Placements, 3)
	assert.InDelta(t, 102.0, m.Length, 1e-9)
	assert.Equal(t, 72.0, m.Placements[1].X)
	assert.Equal(t, 0.0, m.Placements[1].Y)
	assert.Equal(t, 52.0, m.Placements[2].Y)
	assertNoOverlap(t, m, 2)
}

func TestOptimize_PieceExactlyFabricWidth(t *testing.T) {
	m := New(testSettings()).Optimize([]model.Piece{box("band", 150, 10), box("band2", 150, 10)})
	require.Len(t, m.Placements, 2)
	assert.InDelta(t, 22.0, m.Length, 1e-9)
}

func TestOptimize_TooWideWithoutRotation(t *testing.T) {
	m := New(testSettings()).Optimize([]model.Piece{box("wide", 200, 10), box("ok", 10, 10)})

	require.Len(t, m.Unplaced, 1)
	assert.Equal(t, "wide", m.Unplaced[0].Label)
	assert.Len(t, m.Placements, 1)
}

func TestOptimize_RotationRescuesWidePiece(t *testing.T) {
	s := testSettings()
	s.AllowRotation = true
	m := New(s).Optimize([]model.Piece{box("wide", 200, 10)})

	require.Len(t, m.Placements, 1)
	assert.True(t, m.Placements[0].Rotated)
	assert.InDelta(t, 200.0, m.Length, 1e-9)
	_, hi := m.Placements[0].PlacedOutline().BoundingBox()
	assert.InDelta(t, 200.0, hi.Y, 1e-9)
}

func TestOptimize_ManyPiecesStayApart(t *testing.T) {
	var pieces []model.Piece
	for i := 0; i < 12; i++ {
		pieces = append(pieces, box(fmt.Sprintf("p%d", i), float64(20+i*7%50), float64(15+i*11%40)))
	}
	for _, alg := range []model.Algorithm{model.AlgorithmGreedy, model.AlgorithmGenetic} {
		s := testSettings()
		s.Algorithm = alg
		m := New(s).Optimize(pieces)
		assert.Len(t, m.Placements, 12, string(alg))
		assertNoOverlap(t, m, s.PanelGap)
		assert.Greater(t, m.Efficiency(), 0.0)
		assert.LessOrEqual(t, m.Efficiency(), 100.0)
	}
}

func TestOptimizeGenetic_Deterministic(t *testing.T) {
	pieces := []model.Piece{box("A", 60, 30), box("B", 80, 45), box("C", 30, 90), box("D", 50, 50)}
	s := testSettings()
	s.AllowRotation = true

	first := OptimizeGenetic(s, pieces)
	second := OptimizeGenetic(s, pieces)
	assert.Equal(t, first.Length, second.Length)
	assert.Len(t, first.Placements, 4)

	greedy := New(testSettings()).Optimize(pieces)
	assert.LessOrEqual(t, first.Length, greedy.Length+90, "genetic result should be in the same range as greedy")
}

func TestOptimizeGenetic_Empty(t *testing.T) {
	m := OptimizeGenetic(testSettings(), nil)
	assert.Empty(t, m.Placements)
	assert.Equal(t, 0.0, m.Length)
}

func TestLayout_FromPattern(t *testing.T) {
	p := model.NewPattern("two")
	rect := func(w, h float64) model.PanelSpec {
		return model.PanelSpec{
			Vertices: []model.Point2D{geom.Pt(0, 0), geom.Pt(w, 0), geom.Pt(w, h), geom.Pt(0, h)},
			Edges: []model.EdgeSpec{
				{Endpoints: [2]int{0, 1}}, {Endpoints: [2]int{1, 2}},
				{Endpoints: [2]int{2, 3}}, {Endpoints: [2]int{3, 0}},
			},
		}
	}
	p.AddPanel("front", rect(60, 80))
	back := rect(60, 80)
	back.Edges[2].Curvature = &model.CurvatureSpec{Type: "quadratic", Params: []model.Point2D{geom.Pt(0.5, -0.5)}}
	p.AddPanel("back", back)

	pieces, err := Pieces(p, 16)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	assert.Equal(t, "front", pieces[0].Label)
	assert.InDelta(t, 80.0, pieces[0].Height, 1e-9)
	assert.Greater(t, pieces[1].Height, 80.0, "curved top bulges past the rectangle")
	lo, _ := pieces[1].Outline.BoundingBox()
	assert.InDelta(t, 0.0, lo.X, 1e-9)
	assert.InDelta(t, 0.0, lo.Y, 1e-9)

	m, err := New(testSettings()).Layout(p)
	require.NoError(t, err)
	assert.Len(t, m.Placements, 2)
	assertNoOverlap(t, m, 2)
}

func TestLayout_BadPanel(t *testing.T) {
	p := model.NewPattern("bad")
	p.AddPanel("x", model.PanelSpec{
		Vertices: []model.Point2D{geom.Pt(0, 0)},
		Edges:    []model.EdgeSpec{{Endpoints: [2]int{0, 3}}},
	})
	_, err := New(testSettings()).Layout(p)
	assert.Error(t, err)
}

func TestPruneContainedKeepsOneDuplicate(t *testing.T) {
	got := pruneContained([]rect{{0, 0, 10, 10}, {0, 0, 10, 10}, {1, 1, 2, 2}})
	assert.Equal(t, []rect{{0, 0, 10, 10}}, got)
}
