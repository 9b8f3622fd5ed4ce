package garment

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

// Skirt panels sit a little further out than the waistband.
const (
	skirtFrontZ = 25.0
	skirtBackZ  = -20.0
	skirtGap    = 2.0
)

// newSkirtPanel builds one flared skirt panel whose waist is gathered by
// ruffle. With slit set, the bottom slit fraction of each side is left
// unsewn.
func newSkirtPanel(name string, waist, length, ruffle, flare, slit float64) (*pattern.Panel, sides, error) {
	top := waist / 2 * ruffle
	low := top + 2*flare
	if low <= 0 {
		return nil, sides{}, fmt.Errorf("%w: flare %v leaves no hem", ErrInvalidParam, flare)
	}
	outline, err := geom.FromVerts(true,
		geom.Pt(0, 0), geom.Pt(flare, length), geom.Pt(flare+top, length), geom.Pt(low, 0))
	if err != nil {
		return nil, sides{}, err
	}
	p, err := pattern.NewPanel(name, outline)
	if err != nil {
		return nil, sides{}, err
	}
	s, err := newSides(p, ruffle)
	if err != nil {
		return nil, sides{}, err
	}

	if slit > 0 {
		right, left := p.EdgeAt(0), p.EdgeAt(2)
		if err := cutSlit(p, s.right, right, slit, true); err != nil {
			return nil, sides{}, err
		}
		if err := cutSlit(p, s.left, left, slit, false); err != nil {
			return nil, sides{}, err
		}
	}

	p.TopCenterPivot().CenterX()
	return p, s, nil
}

// cutSlit splits e at frac of its length, measured from the hem end, and
// keeps only the part away from the hem in the side interface in.
func cutSlit(p *pattern.Panel, in *pattern.Interface, e *geom.Edge, frac float64, hemAtStart bool) error {
	t := 1 - frac
	if hemAtStart {
		t = frac
	}
	pt := e.Start.Lerp(e.End.Point2D, t)
	mid := geom.NewVertex(pt.X, pt.Y)
	a, b := geom.NewEdge(e.Start, mid), geom.NewEdge(mid, e.End)
	if err := p.Substitute(e, a, b); err != nil {
		return err
	}
	sewn := a
	if hemAtStart {
		sewn = b
	}
	return in.Substitute(e, []*geom.Edge{sewn}, p)
}

// buildPanelSkirt makes a two-panel skirt, gathers its waist into a
// waistband and places the skirt right under the band.
func buildPanelSkirt(d Design) (*pattern.Component, error) {
	waist, err := d.positive("waist")
	if err != nil {
		return nil, err
	}
	length, err := d.positive("length")
	if err != nil {
		return nil, err
	}
	ruffle, err := d.positive("ruffle")
	if err != nil {
		return nil, err
	}
	slit := d["slit"]
	if slit < 0 || slit >= 1 {
		return nil, fmt.Errorf("%w: slit must be in [0, 1), got %v", ErrInvalidParam, slit)
	}
	flare := d["flare"]
	// The band takes the eased waist; the skirt top gathers to the same length.
	waist *= d["wb_ease"]
	level := d["waist_level"]

	front, fs, err := newSkirtPanel("skirt_front", waist, length, ruffle, flare, slit)
	if err != nil {
		return nil, err
	}
	front.TranslateTo(v3.Vec{Y: level, Z: skirtFrontZ})
	back, bs, err := newSkirtPanel("skirt_back", waist, length, ruffle, flare, slit)
	if err != nil {
		return nil, err
	}
	back.TranslateTo(v3.Vec{Y: level, Z: skirtBackZ})

	skirt := pattern.NewComponent("skirt").AddPanel(front, back)
	skirt.Stitches.Append(fs.right, bs.right).Append(fs.left, bs.left)
	skirtTop := pattern.FromMultiple(fs.top, bs.top)
	skirt.SetInterface("top", skirtTop)
	skirt.SetInterface("bottom", pattern.FromMultiple(fs.bottom, bs.bottom))

	wb, err := buildWaistband(d)
	if err != nil {
		return nil, err
	}
	wbBottom, err := wb.Interface("bottom")
	if err != nil {
		return nil, err
	}
	if err := skirt.PlaceByInterface(skirtTop, wbBottom, skirtGap); err != nil {
		return nil, err
	}

	c := pattern.NewComponent(string(PanelSkirt)).AddSub(wb, skirt)
	c.Stitches.Append(wbBottom, skirtTop)
	c.SetInterface("top", wb.Interfaces["top"])
	c.SetInterface("bottom", skirt.Interfaces["bottom"])
	return c, nil
}
