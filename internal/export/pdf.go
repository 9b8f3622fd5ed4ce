// Package export writes assembled patterns and their fabric markers to
// DXF, PDF and XLSX files.
package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/StitchKit/internal/engine"
	"github.com/piwi3910/StitchKit/internal/model"
)

// panelColor represents an RGB color for a drawn panel.
type panelColor struct {
	R, G, B int
}

var panelColors = []panelColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants in mm.
const (
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// pageSizes are the fpdf size names accepted in AppConfig.PageSize.
var pageSizes = map[string]bool{"A3": true, "A4": true, "A5": true, "Letter": true, "Legal": true}

// ExportPDF writes the pattern as a PDF: a marker overview when m is given,
// then one page per panel with its outline, edge numbers, stitches and a
// QR-coded label.
func ExportPDF(path string, p model.Pattern, m *model.Marker, cfg model.AppConfig) error {
	if len(p.Panels) == 0 {
		return fmt.Errorf("no panels to export")
	}
	samples := cfg.CurveSamples
	if samples < 1 {
		samples = model.DefaultLayoutSettings().CurveSamples
	}
	pieces, err := engine.Pieces(p, samples)
	if err != nil {
		return err
	}
	labels, err := CollectLabelInfos(p, m)
	if err != nil {
		return err
	}

	size := cfg.PageSize
	if !pageSizes[size] {
		size = "A4"
	}
	pdf := fpdf.New("L", "mm", size, "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pageW, pageH := pdf.GetPageSize()
	pg := page{w: pageW, h: pageH, samples: samples}

	if m != nil {
		pdf.AddPage()
		pg.renderMarker(pdf, p, *m)
	}
	for i, piece := range pieces {
		pdf.AddPage()
		if err := pg.renderPanel(pdf, p, piece, labels[i], i); err != nil {
			return fmt.Errorf("panel %s: %w", piece.ID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

type page struct {
	w, h    float64
	samples int
}

func (pg page) drawWidth() float64 { return pg.w - marginLeft - marginRight }

// renderMarker draws the cutting layout on the current page.
func (pg page) renderMarker(pdf *fpdf.Fpdf, p model.Pattern, m model.Marker) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: marker (%.0f x %.0f %s)", p.Name, m.FabricWidth, m.Length, p.Units)
	pdf.CellFormat(pg.drawWidth(), headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Panels: %d | Unplaced: %d | Efficiency: %.1f%%",
		len(m.Placements), len(m.Unplaced), m.Efficiency())
	pdf.CellFormat(pg.drawWidth(), 5, stats, "", 0, "L", false, 0, "")

	// The roll runs along the page, so marker length maps to page X.
	drawHeight := pg.h - drawAreaTop - marginBottom - statsHeight
	length := math.Max(m.Length, 1)
	scale := math.Min(pg.drawWidth()/length, drawHeight/m.FabricWidth)
	offsetX, offsetY := marginLeft, drawAreaTop
	toPage := func(pt model.Point2D) fpdf.PointType {
		return fpdf.PointType{X: offsetX + pt.Y*scale, Y: offsetY + pt.X*scale}
	}

	pdf.SetFillColor(235, 228, 214)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, length*scale, m.FabricWidth*scale, "FD")

	for i, pl := range m.Placements {
		col := panelColors[i%len(panelColors)]
		outline := pl.PlacedOutline()
		pts := make([]fpdf.PointType, len(outline))
		for j, pt := range outline {
			pts[j] = toPage(pt)
		}
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(pts, "FD")

		pw, ph := pl.PlacedHeight()*scale, pl.PlacedWidth()*scale
		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			label := pl.Piece.Label
			if pl.Rotated {
				label += " R"
			}
			lw := pdf.GetStringWidth(label)
			c := toPage(model.Point2D{X: pl.X + pl.PlacedWidth()/2, Y: pl.Y + pl.PlacedHeight()/2})
			pdf.SetXY(c.X-lw/2, c.Y-2)
			pdf.CellFormat(lw, 4, label, "", 0, "C", false, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(offsetX, offsetY+m.FabricWidth*scale+1)
	pdf.CellFormat(length*scale, 4, fmt.Sprintf("%.1f %s", m.Length, p.Units), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	if len(m.Unplaced) > 0 {
		y := offsetY + m.FabricWidth*scale + 8
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(pg.drawWidth(), 5, "WARNING: Unplaced panels", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, piece := range m.Unplaced {
			y += 5
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(pg.drawWidth(), 5, fmt.Sprintf("- %s: %.1f x %.1f %s", piece.Label, piece.Width, piece.Height, p.Units), "", 0, "L", false, 0, "")
		}
		pdf.SetTextColor(0, 0, 0)
	}
	pg.footer(pdf)
}

// renderPanel draws one panel at full page scale with numbered edges.
func (pg page) renderPanel(pdf *fpdf.Fpdf, p model.Pattern, piece model.Piece, label LabelInfo, idx int) error {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("%s: %s (%.1f x %.1f %s)", p.Name, piece.Label, piece.Width, piece.Height, p.Units)
	pdf.CellFormat(pg.drawWidth(), headerHeight, title, "", 0, "L", false, 0, "")

	// Outline on the left, label and stitch list on the right.
	sideW := labelWidth + 5
	drawW := pg.drawWidth() - sideW
	drawH := pg.h - drawAreaTop - marginBottom - statsHeight
	scale := math.Min(drawW/math.Max(piece.Width, 1), drawH/math.Max(piece.Height, 1))
	offsetX, offsetY := marginLeft, drawAreaTop
	// Flip Y so the panel reads the same way up as in the pattern.
	toPage := func(pt model.Point2D) fpdf.PointType {
		return fpdf.PointType{X: offsetX + pt.X*scale, Y: offsetY + (piece.Height-pt.Y)*scale}
	}

	col := panelColors[idx%len(panelColors)]
	pts := make([]fpdf.PointType, len(piece.Outline))
	for i, pt := range piece.Outline {
		pts[i] = toPage(pt)
	}
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.3)
	pdf.Polygon(pts, "FD")

	ps := p.Panels[piece.ID]
	lo, err := panelOrigin(ps, pg.samples)
	if err != nil {
		return err
	}
	pdf.SetFont("Helvetica", "B", 8)
	for i, e := range ps.Edges {
		a, b := ps.Vertices[e.Endpoints[0]], ps.Vertices[e.Endpoints[1]]
		mid := model.Point2D{X: (a.X+b.X)/2 - lo.X, Y: (a.Y+b.Y)/2 - lo.Y}
		at := toPage(mid)
		txt := fmt.Sprintf("%d", i)
		w := pdf.GetStringWidth(txt) + 2
		pdf.SetFillColor(255, 255, 255)
		pdf.SetXY(at.X-w/2, at.Y-2)
		pdf.CellFormat(w, 4, txt, "1", 0, "C", true, 0, "")
	}

	sideX := marginLeft + drawW + 5
	if err := renderLabel(pdf, sideX, drawAreaTop, label); err != nil {
		return err
	}

	y := drawAreaTop + labelHeight + 6
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(sideX, y)
	pdf.CellFormat(labelWidth, 5, "Stitches", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, s := range p.Stitches {
		for k, side := range s {
			if side.Panel != piece.ID {
				continue
			}
			other := s[1-k]
			y += 4.5
			if y > pg.h-marginBottom-5 {
				break
			}
			pdf.SetXY(sideX, y)
			pdf.CellFormat(labelWidth, 4, fmt.Sprintf("edge %d -> %s edge %d", side.Edge, other.Panel, other.Edge), "", 0, "L", false, 0, "")
		}
	}
	pg.footer(pdf)
	return nil
}

func (pg page) footer(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pg.h-marginBottom)
	pdf.CellFormat(pg.drawWidth(), 4, "Generated by StitchKit", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// panelOrigin is the bounding box corner that engine.Pieces moved to (0, 0).
func panelOrigin(ps model.PanelSpec, samples int) (model.Point2D, error) {
	outline, err := ps.Outline(samples)
	if err != nil {
		return model.Point2D{}, err
	}
	lo, _ := outline.BoundingBox()
	return lo, nil
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
