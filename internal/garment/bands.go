package garment

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

// Depth offsets keep front and back panels apart in 3D.
const (
	frontZ = 20.0
	backZ  = -15.0
)

// sides are the four seam sides of a four-edged panel. Right and left are
// as seen by the wearer.
type sides struct {
	right, top, left, bottom *pattern.Interface
}

// newSides wraps outline edges 0..3 as right, top, left and bottom.
func newSides(p *pattern.Panel, topRuffle float64) (sides, error) {
	var s sides
	var err error
	if s.right, err = pattern.NewInterface(p, p.EdgeAt(0)); err != nil {
		return s, err
	}
	if s.top, err = pattern.NewRuffledInterface(p, topRuffle, p.EdgeAt(1)); err != nil {
		return s, err
	}
	s.top.Reverse(true)
	if s.left, err = pattern.NewInterface(p, p.EdgeAt(2)); err != nil {
		return s, err
	}
	if s.bottom, err = pattern.NewInterface(p, p.EdgeAt(3)); err != nil {
		return s, err
	}
	return s, nil
}

// newBandPanel is a width x depth rectangle pivoted at its top center.
func newBandPanel(name string, width, depth float64) (*pattern.Panel, sides, error) {
	outline, err := geom.FromVerts(true, geom.Pt(0, 0), geom.Pt(0, depth), geom.Pt(width, depth), geom.Pt(width, 0))
	if err != nil {
		return nil, sides{}, err
	}
	p, err := pattern.NewPanel(name, outline)
	if err != nil {
		return nil, sides{}, err
	}
	s, err := newSides(p, 1)
	if err != nil {
		return nil, sides{}, err
	}
	p.TopCenterPivot().CenterX()
	return p, s, nil
}

// buildWaistband sews a front and a back band at both sides. The component
// publishes top and bottom, each running across both bands.
func buildWaistband(d Design) (*pattern.Component, error) {
	waist, err := d.positive("waist")
	if err != nil {
		return nil, err
	}
	depth, err := d.positive("wb_width")
	if err != nil {
		return nil, err
	}
	ease, err := d.positive("wb_ease")
	if err != nil {
		return nil, err
	}
	width := waist * ease / 2
	level := d["waist_level"]

	front, fs, err := newBandPanel("wb_front", width, depth)
	if err != nil {
		return nil, err
	}
	front.TranslateBy(v3.Vec{Y: level, Z: frontZ})
	back, bs, err := newBandPanel("wb_back", width, depth)
	if err != nil {
		return nil, err
	}
	back.TranslateBy(v3.Vec{Y: level, Z: backZ})

	c := pattern.NewComponent(string(Waistband)).AddPanel(front, back)
	c.Stitches.Append(fs.right, bs.right).Append(fs.left, bs.left)
	c.SetInterface("top_f", fs.top).SetInterface("top_b", bs.top)
	c.SetInterface("bottom_f", fs.bottom).SetInterface("bottom_b", bs.bottom)
	c.SetInterface("top", pattern.FromMultiple(fs.top, bs.top))
	c.SetInterface("bottom", pattern.FromMultiple(fs.bottom, bs.bottom))
	return c, nil
}
