package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/StitchKit/internal/engine"
	"github.com/piwi3910/StitchKit/internal/model"
)

// Sheet names in the seam report workbook.
const (
	PanelsSheet   = "Panels"
	StitchesSheet = "Stitches"
)

var (
	panelHeaders  = []string{"Panel", "Width", "Height", "Area", "Edges", "Curved Edges"}
	stitchHeaders = []string{"#", "Side A", "Side B", "Edge Pairs", "Length A", "Length B", "Fabric A", "Fabric B", "Mismatch %", "Reversed"}
)

// ExportSeamReport writes an XLSX workbook with one row per panel and one
// row per stitch, so seam lengths can be checked before cutting.
func ExportSeamReport(path string, p model.Pattern, summaries []model.StitchSummary) error {
	if len(p.Panels) == 0 {
		return fmt.Errorf("no panels to export")
	}
	pieces, err := engine.Pieces(p, model.DefaultLayoutSettings().CurveSamples)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PanelsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(StitchesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, PanelsSheet, 1, toRow(panelHeaders)); err != nil {
		return err
	}
	for i, piece := range pieces {
		ps := p.Panels[piece.ID]
		curved := 0
		for _, e := range ps.Edges {
			if e.Curvature != nil {
				curved++
			}
		}
		row := []any{piece.ID, round1(piece.Width), round1(piece.Height), round1(piece.Outline.Area()), len(ps.Edges), curved}
		if err := writeRow(f, PanelsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, StitchesSheet, 1, toRow(stitchHeaders)); err != nil {
		return err
	}
	for i, s := range summaries {
		row := []any{
			s.Index, s.SideA, s.SideB, s.EdgePairs,
			round1(s.LengthA), round1(s.LengthB), round1(s.FabricA), round1(s.FabricB),
			round1(s.Mismatch() * 100), s.Reversed,
		}
		if err := writeRow(f, StitchesSheet, i+2, row); err != nil {
			return err
		}
	}

	for sheet, headers := range map[string][]string{PanelsSheet: panelHeaders, StitchesSheet: stitchHeaders} {
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}

	return f.SaveAs(path)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
