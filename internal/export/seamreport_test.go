package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/StitchKit/internal/model"
)

func TestExportSeamReport(t *testing.T) {
	p := buildTestPattern()
	summaries := []model.StitchSummary{
		{Index: 0, SideA: "front", SideB: "back", EdgePairs: 1, LengthA: 60, LengthB: 60, FabricA: 60, FabricB: 60, Valid: true},
		{Index: 2, SideA: "band", SideB: "front", EdgePairs: 1, LengthA: 80, LengthB: 40, FabricA: 80, FabricB: 40, Reversed: true},
	}
	path := filepath.Join(t.TempDir(), "seams.xlsx")

	require.NoError(t, ExportSeamReport(path, p, summaries))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{PanelsSheet, StitchesSheet}, f.GetSheetList())

	panels, err := f.GetRows(PanelsSheet)
	require.NoError(t, err)
	require.Len(t, panels, 4)
	assert.Equal(t, panelHeaders, panels[0])
	assert.Equal(t, []string{"front", "40", "60", "2400", "4", "0"}, panels[1])
	assert.Equal(t, "band", panels[3][0])
	assert.Equal(t, "1", panels[3][5])

	stitches, err := f.GetRows(StitchesSheet)
	require.NoError(t, err)
	require.Len(t, stitches, 3)
	assert.Equal(t, "band", stitches[2][1])
	assert.Equal(t, "50", stitches[2][8])
	assert.Equal(t, "TRUE", stitches[2][9])
}

func TestExportSeamReport_NoStitches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seams.xlsx")
	require.NoError(t, ExportSeamReport(path, buildTestPattern(), nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(StitchesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportSeamReport_EmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seams.xlsx")
	assert.Error(t, ExportSeamReport(path, model.NewPattern("empty"), nil))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.3, round1(12.34))
	assert.Equal(t, 12.4, round1(12.35001))
	assert.Equal(t, 0.0, round1(0))
}
