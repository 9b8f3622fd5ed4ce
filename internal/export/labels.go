package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/StitchKit/internal/engine"
	"github.com/piwi3910/StitchKit/internal/model"
)

// LabelInfo holds the data encoded into each panel label's QR code.
type LabelInfo struct {
	PatternID string  `json:"pattern"`
	Panel     string  `json:"panel"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Units     string  `json:"units"`
	Edges     int     `json:"edges"`
	Stitches  int     `json:"stitches"` // stitch pairs touching this panel
	Placed    bool    `json:"placed"`
	Rotated   bool    `json:"rotated,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos builds one label per panel in pattern order. Marker
// positions are filled in when m is given.
func CollectLabelInfos(p model.Pattern, m *model.Marker) ([]LabelInfo, error) {
	pieces, err := engine.Pieces(p, model.DefaultLayoutSettings().CurveSamples)
	if err != nil {
		return nil, err
	}
	stitches := make(map[string]int)
	for _, s := range p.Stitches {
		stitches[s[0].Panel]++
		if s[1].Panel != s[0].Panel {
			stitches[s[1].Panel]++
		}
	}
	placed := make(map[string]model.Placement)
	if m != nil {
		for _, pl := range m.Placements {
			placed[pl.Piece.ID] = pl
		}
	}

	labels := make([]LabelInfo, 0, len(pieces))
	for _, piece := range pieces {
		info := LabelInfo{
			PatternID: p.ID,
			Panel:     piece.ID,
			Width:     piece.Width,
			Height:    piece.Height,
			Units:     p.Units,
			Edges:     len(p.Panels[piece.ID].Edges),
			Stitches:  stitches[piece.ID],
		}
		if pl, ok := placed[piece.ID]; ok {
			info.Placed = true
			info.Rotated = pl.Rotated
			info.X, info.Y = pl.X, pl.Y
		}
		labels = append(labels, info)
	}
	return labels, nil
}

// ExportLabels generates a PDF of QR-coded labels, one per panel, laid out
// on a standard label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func ExportLabels(path string, p model.Pattern, m *model.Marker) error {
	labels, err := CollectLabelInfos(p, m)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		return fmt.Errorf("no panels to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.Panel, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%s", info.PatternID, info.Panel)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	name := info.Panel
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.1f x %.1f %s", info.Width, info.Height, info.Units)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%d edges, %d stitches", info.Edges, info.Stitches), "", 1, "L", false, 0, "")

	if info.Placed {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pos := fmt.Sprintf("Marker @ (%.0f, %.0f)", info.X, info.Y)
		if info.Rotated {
			pos += " R"
		}
		pdf.CellFormat(textW, 3, pos, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
