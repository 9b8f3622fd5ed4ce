package export

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/model"
)

func TestCollectLabelInfos(t *testing.T) {
	p := buildTestPattern()
	m := buildTestMarker(t, p)

	labels, err := CollectLabelInfos(p, &m)
	require.NoError(t, err)
	require.Len(t, labels, 3)

	assert.Equal(t, "front", labels[0].Panel)
	assert.Equal(t, "back", labels[1].Panel)
	assert.Equal(t, "band", labels[2].Panel)

	front := labels[0]
	assert.Equal(t, p.ID, front.PatternID)
	assert.InDelta(t, 40.0, front.Width, 1e-9)
	assert.InDelta(t, 60.0, front.Height, 1e-9)
	assert.Equal(t, "cm", front.Units)
	assert.Equal(t, 4, front.Edges)
	assert.Equal(t, 3, front.Stitches)
	assert.True(t, front.Placed)

	assert.Equal(t, 2, labels[1].Stitches)
	assert.Equal(t, 1, labels[2].Stitches)
	assert.Greater(t, labels[2].Height, 8.0, "curved top adds to the band height")
}

func TestCollectLabelInfos_NoMarker(t *testing.T) {
	labels, err := CollectLabelInfos(buildTestPattern(), nil)
	require.NoError(t, err)
	for _, l := range labels {
		assert.False(t, l.Placed, l.Panel)
	}
}

func TestLabelInfo_JSON(t *testing.T) {
	info := LabelInfo{PatternID: "abc", Panel: "front", Width: 40, Height: 60, Units: "cm", Edges: 4}
	data, err := json.Marshal(info)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "front", raw["panel"])
	assert.NotContains(t, raw, "rotated")
	assert.NotContains(t, raw, "x")
}

func TestExportLabels_CreatesFile(t *testing.T) {
	p := buildTestPattern()
	m := buildTestMarker(t, p)
	path := filepath.Join(t.TempDir(), "labels.pdf")

	require.NoError(t, ExportLabels(path, p, &m))
	assertNonEmptyFile(t, path, 500)
}

func TestExportLabels_ManyPanels(t *testing.T) {
	p := model.NewPattern("gores")
	for i := 0; i < 35; i++ {
		p.AddPanel(string(rune('a'+i%26))+string(rune('0'+i/26)), rectSpec(10, 30))
	}
	path := filepath.Join(t.TempDir(), "labels.pdf")

	require.NoError(t, ExportLabels(path, p, nil))
	assertNonEmptyFile(t, path, 500)
}

func TestExportLabels_EmptyPattern(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	assert.Error(t, ExportLabels(path, model.NewPattern("empty"), nil))
}
