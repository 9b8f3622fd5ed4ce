package assembly

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/model"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

func rect(t *testing.T, name string, x, y, w, h float64) *pattern.Panel {
	t.Helper()
	seq, err := geom.FromVerts(true, geom.Pt(x, y), geom.Pt(x+w, y), geom.Pt(x+w, y+h), geom.Pt(x, y+h))
	require.NoError(t, err)
	p, err := pattern.NewPanel(name, seq)
	require.NoError(t, err)
	return p
}

func TestSerializePanel_RelativeToFirstEdge(t *testing.T) {
	p := rect(t, "front", 2, 1, 10, 20)
	p.Translation = v3.Vec{Z: 3}

	ps, ids, err := SerializePanel(p)
	require.NoError(t, err)

	assert.Equal(t, model.Vec3{2, 1, 3}, ps.Translation)
	assert.Equal(t, []model.Point2D{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 20), geom.Pt(0, 20)}, ps.Vertices)
	require.Len(t, ps.Edges, 4)
	assert.Equal(t, [2]int{0, 1}, ps.Edges[0].Endpoints)
	assert.Equal(t, [2]int{3, 0}, ps.Edges[3].Endpoints)
	for i, id := range ids {
		assert.Equal(t, p.EdgeAt(i).ID, id)
	}

	// the panel itself keeps its coordinates
	assert.Equal(t, geom.Pt(2, 1), p.EdgeAt(0).Start.Point2D)
	assert.Equal(t, v3.Vec{Z: 3}, p.Translation)
}

func TestSerializePanel_Curvature(t *testing.T) {
	p := rect(t, "front", 0, 0, 10, 20)
	top := p.EdgeAt(2)
	curved, err := geom.CurveThrough(top.Start, top.End, geom.Pt(5, 22))
	require.NoError(t, err)
	require.NoError(t, p.SubstituteAt(2, curved))

	ps, _, err := SerializePanel(p)
	require.NoError(t, err)
	require.NotNil(t, ps.Edges[2].Curvature)
	assert.Equal(t, "quadratic", ps.Edges[2].Curvature.Type)
	assert.Equal(t, curved.Curve.Control, ps.Edges[2].Curvature.Params)
	assert.Nil(t, ps.Edges[0].Curvature)

	outline, err := ps.Outline(16)
	require.NoError(t, err)
	_, hi := outline.BoundingBox()
	assert.InDelta(t, 22.0, hi.Y, 1e-6)
}

// Two rectangles facing each other across the Z axis. The second one is
// reversed by autonorm, so the stitch has to turn side B around.
func TestAssemble_RectanglesEndToEnd(t *testing.T) {
	a := rect(t, "a", 0, 0, 10, 20)
	b := rect(t, "b", 0, 0, 10, 15)
	sideB := b.EdgeAt(1)
	a.TranslateTo(v3.Vec{Z: 5})
	b.TranslateTo(v3.Vec{Z: -5})
	require.Equal(t, geom.Pt(10, 15), sideB.Start.Point2D, "autonorm should reverse b")

	c := pattern.NewComponent("pair").AddPanel(a, b)
	c.Stitches.Append(pattern.MustInterface(a, a.EdgeAt(1)), pattern.MustInterface(b, sideB))

	al, err := Align(c.AllStitches()[0])
	require.NoError(t, err)
	assert.True(t, al.ReversedB)
	as := a.PointTo3D(al.A.At(0).Start.Point2D)
	ae := a.PointTo3D(al.A.At(0).End.Point2D)
	bs := b.PointTo3D(al.B.At(0).Start.Point2D)
	be := b.PointTo3D(al.B.At(0).End.Point2D)
	assert.Less(t, dist(as, bs)+dist(ae, be), dist(as, be)+dist(ae, bs))

	res, err := Assemble(c, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, res.Pattern.Validate())
	assert.Equal(t, []string{"a", "b"}, res.Pattern.PanelOrder)

	bIndex := -1
	for i := 0; i < b.Len(); i++ {
		if b.EdgeAt(i) == sideB {
			bIndex = i
		}
	}
	require.Equal(t, []model.StitchSpec{{{Panel: "a", Edge: 1}, {Panel: "b", Edge: bIndex}}}, res.Pattern.Stitches)

	require.Len(t, res.Summaries, 1)
	sum := res.Summaries[0]
	assert.True(t, sum.Reversed)
	assert.False(t, sum.Valid)
	assert.InDelta(t, 20.0, sum.LengthA, 1e-9)
	assert.InDelta(t, 15.0, sum.LengthB, 1e-9)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "apart")
}

func TestAssemble_MultiPanelSideReversed(t *testing.T) {
	seq, err := geom.FromVerts(true, geom.Pt(0, 0), geom.Pt(1, 0), geom.Pt(2, 0), geom.Pt(2, 1), geom.Pt(0, 1))
	require.NoError(t, err)
	band := pattern.MustPanel("band", seq)
	left := rect(t, "left", 0, 0, 1, 1)
	right := rect(t, "right", 0, 0, 1, 1)
	left.TranslateTo(v3.Vec{Y: -1})
	right.TranslateTo(v3.Vec{X: 1, Y: -1})

	waist := pattern.MustInterface(band, band.EdgeAt(0), band.EdgeAt(1))
	tops := pattern.FromMultiple(
		pattern.MustInterface(right, right.EdgeAt(2)),
		pattern.MustInterface(left, left.EdgeAt(2)),
	)
	c := pattern.NewComponent("skirt").AddPanel(band, left, right)
	c.Stitches.Append(waist, tops)

	res, err := Assemble(c, Options{LengthTolerance: 0.01})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []model.StitchSpec{
		{{Panel: "band", Edge: 0}, {Panel: "left", Edge: 2}},
		{{Panel: "band", Edge: 1}, {Panel: "right", Edge: 2}},
	}, res.Pattern.Stitches)
	assert.True(t, res.Summaries[0].Reversed)
	assert.Equal(t, "right+left", res.Summaries[0].SideB)
	assert.Equal(t, "skirt", res.Pattern.Name)
	assert.Equal(t, "cm", res.Pattern.Units)
}

func TestAssemble_RuffledLengths(t *testing.T) {
	top := rect(t, "top", 0, 0, 2, 1)
	bottom := rect(t, "bottom", 0, 0, 1, 1)
	bottom.TranslateTo(v3.Vec{Y: -1})

	gathered, err := pattern.NewRuffledInterface(top, 2, top.EdgeAt(0))
	require.NoError(t, err)
	c := pattern.NewComponent("c").AddPanel(top, bottom)
	c.Stitches.Append(gathered, pattern.MustInterface(bottom, bottom.EdgeAt(2)))

	res, err := Assemble(c, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	sum := res.Summaries[0]
	assert.True(t, sum.Valid)
	assert.InDelta(t, 2.0, sum.FabricA, 1e-9)
	assert.InDelta(t, 1.0, sum.LengthA, 1e-9)
	assert.InDelta(t, 1.0, sum.LengthB, 1e-9)
}

func TestAssemble_Errors(t *testing.T) {
	t.Run("edge count mismatch", func(t *testing.T) {
		a := rect(t, "a", 0, 0, 10, 20)
		b := rect(t, "b", 0, 0, 10, 20)
		c := pattern.NewComponent("c").AddPanel(a, b)
		c.Stitches.Append(pattern.MustInterface(a, a.EdgeAt(0), a.EdgeAt(1)), pattern.MustInterface(b, b.EdgeAt(0)))
		_, err := Assemble(c, DefaultOptions())
		assert.ErrorIs(t, err, ErrStitchMismatch)
	})

	t.Run("stale edge", func(t *testing.T) {
		a := rect(t, "a", 0, 0, 10, 20)
		b := rect(t, "b", 0, 0, 10, 20)
		c := pattern.NewComponent("c").AddPanel(a, b)
		c.Stitches.Append(pattern.MustInterface(a, a.EdgeAt(0)), pattern.MustInterface(b, b.EdgeAt(0)))
		halves, err := geom.FromFractions(a.EdgeAt(0).Start.Point2D, a.EdgeAt(0).End.Point2D, 0.5, 0.5)
		require.NoError(t, err)
		require.NoError(t, a.SubstituteAt(0, halves.Edges()...))
		_, err = Assemble(c, DefaultOptions())
		assert.ErrorIs(t, err, pattern.ErrStaleEdge)
	})

	t.Run("panel outside component", func(t *testing.T) {
		a := rect(t, "a", 0, 0, 10, 20)
		b := rect(t, "b", 0, 0, 10, 20)
		c := pattern.NewComponent("c").AddPanel(a)
		c.Stitches.Append(pattern.MustInterface(a, a.EdgeAt(0)), pattern.MustInterface(b, b.EdgeAt(0)))
		_, err := Assemble(c, DefaultOptions())
		assert.ErrorContains(t, err, "not part of the assembly")
	})

	t.Run("duplicate names", func(t *testing.T) {
		c := pattern.NewComponent("c").AddPanel(rect(t, "a", 0, 0, 1, 1), rect(t, "a", 0, 0, 2, 2))
		_, err := Assemble(c, DefaultOptions())
		assert.ErrorContains(t, err, "duplicate panel name")
	})
}
