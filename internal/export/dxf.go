package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/StitchKit/internal/engine"
	"github.com/piwi3910/StitchKit/internal/model"
)

// MarkerLayer holds the fabric outline in DXF exports.
const MarkerLayer = "MARKER"

// layerColors cycles through the DXF palette for panel layers.
var layerColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// dxfPanelGap separates panels when no marker positions them.
const dxfPanelGap = 5.0

// ExportDXF writes every panel outline to path, one layer per panel, with
// curves linearised into LINE entities. With a marker the panels sit where
// it placed them inside the fabric outline; without one they are lined up
// along X.
func ExportDXF(path string, p model.Pattern, m *model.Marker) error {
	placements, err := dxfPlacements(p, m)
	if err != nil {
		return err
	}
	if len(placements) == 0 {
		return fmt.Errorf("no panels to export")
	}

	d := dxf.NewDrawing()
	if m != nil {
		if _, err := d.AddLayer(MarkerLayer, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add marker layer: %w", err)
		}
		corners := model.Outline{{}, {X: m.FabricWidth}, {X: m.FabricWidth, Y: m.Length}, {Y: m.Length}}
		if err := drawOutline(d, corners); err != nil {
			return err
		}
	}

	for i, pl := range placements {
		name := pl.Piece.ID
		if _, err := d.AddLayer(name, layerColors[i%len(layerColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("panel %s: failed to add layer: %w", name, err)
		}
		outline := pl.PlacedOutline()
		if err := drawOutline(d, outline); err != nil {
			return fmt.Errorf("panel %s: %w", name, err)
		}
		lo, hi := outline.BoundingBox()
		height := textHeight(hi.X-lo.X, hi.Y-lo.Y)
		if _, err := d.Text(name, (lo.X+hi.X)/2, (lo.Y+hi.Y)/2, 0, height); err != nil {
			return fmt.Errorf("panel %s: failed to add label: %w", name, err)
		}
	}

	return d.SaveAs(path)
}

// dxfPlacements returns the marker placements, or a row of unrotated
// pieces when there is no marker.
func dxfPlacements(p model.Pattern, m *model.Marker) ([]model.Placement, error) {
	if m != nil {
		return m.Placements, nil
	}
	pieces, err := engine.Pieces(p, model.DefaultLayoutSettings().CurveSamples)
	if err != nil {
		return nil, err
	}
	var out []model.Placement
	x := 0.0
	for _, piece := range pieces {
		out = append(out, model.Placement{Piece: piece, X: x})
		x += piece.Width + dxfPanelGap
	}
	return out, nil
}

func drawOutline(d *drawing.Drawing, o model.Outline) error {
	for i, a := range o {
		b := o[(i+1)%len(o)]
		if _, err := d.Line(a.X, a.Y, 0, b.X, b.Y, 0); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}
	return nil
}

// textHeight scales panel labels to the panel, within sensible bounds.
func textHeight(w, h float64) float64 {
	return min(max(min(w, h)/10, 1), 5)
}
