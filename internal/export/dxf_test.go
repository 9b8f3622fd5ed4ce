package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/model"
)

func TestExportDXF_WithMarker(t *testing.T) {
	p := buildTestPattern()
	m := buildTestMarker(t, p)
	path := filepath.Join(t.TempDir(), "skirt.dxf")

	require.NoError(t, ExportDXF(path, p, &m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	for _, layer := range []string{MarkerLayer, "front", "back", "band"} {
		assert.Contains(t, content, layer)
	}
	assert.Contains(t, content, "LINE")
	assert.Contains(t, content, "TEXT")
}

func TestExportDXF_WithoutMarker(t *testing.T) {
	p := buildTestPattern()
	path := filepath.Join(t.TempDir(), "skirt.dxf")

	require.NoError(t, ExportDXF(path, p, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), MarkerLayer)
	assert.Greater(t, strings.Count(string(data), "LINE"), 12, "curved band is linearised")
}

func TestExportDXF_EmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	assert.Error(t, ExportDXF(path, model.NewPattern("empty"), nil))
}

func TestDXFPlacements_LinedUp(t *testing.T) {
	placements, err := dxfPlacements(buildTestPattern(), nil)
	require.NoError(t, err)
	require.Len(t, placements, 3)
	assert.Equal(t, 0.0, placements[0].X)
	assert.Equal(t, 40+dxfPanelGap, placements[1].X)
	assert.Equal(t, 80+2*dxfPanelGap, placements[2].X)
}

func TestTextHeight(t *testing.T) {
	assert.Equal(t, 1.0, textHeight(5, 5))
	assert.Equal(t, 4.0, textHeight(40, 60))
	assert.Equal(t, 5.0, textHeight(400, 600))
}
