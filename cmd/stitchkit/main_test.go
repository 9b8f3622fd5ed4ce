package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/StitchKit/internal/project"
)

// runIn runs the command with its config kept under a temp dir.
func runIn(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	return runWith(t, dir, args...)
}

func runWith(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-config", filepath.Join(dir, "cfg", "config.json")}, args...)
	err := run(full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_List(t *testing.T) {
	out, _, err := runIn(t, "-list")
	require.NoError(t, err)
	assert.Contains(t, out, "panel_skirt")
	assert.Contains(t, out, "waistband")
}

func TestRun_DefaultGarmentWithExports(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	outDir := filepath.Join(dir, "out")

	out, stderr, err := runWith(t, dir, "-out", outDir, "-dxf", "-pdf", "-xlsx", "-labels", "-gcode", "-seam", "1")
	require.NoError(t, err, stderr)

	for _, name := range []string{
		"panel_skirt.stitch.json", "panel_skirt.dxf", "panel_skirt.pdf",
		"panel_skirt-labels.pdf", "panel_skirt-seams.xlsx", "panel_skirt.nc",
	} {
		path := filepath.Join(outDir, name)
		assert.Contains(t, out, path)
		info, err := os.Stat(path)
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}
	assert.Contains(t, stderr, "pattern assembled")
	assert.Contains(t, stderr, "cut file written")

	nc, err := os.ReadFile(filepath.Join(outDir, "panel_skirt.nc"))
	require.NoError(t, err)
	assert.Contains(t, string(nc), "Seam allowance: 1.00 cm")

	p, err := project.LoadPattern(filepath.Join(outDir, "panel_skirt.stitch.json"))
	require.NoError(t, err)
	assert.Equal(t, "panel_skirt", p.Garment)
	assert.Len(t, p.Panels, 4)
	// five seams; the waistband seam pairs two edges on each side
	assert.Len(t, p.Stitches, 6)

	cfg, err := project.LoadAppConfig(filepath.Join(dir, "cfg", "config.json"))
	require.NoError(t, err)
	require.NotEmpty(t, cfg.RecentPatterns)
	assert.Equal(t, filepath.Join(outDir, "panel_skirt.stitch.json"), cfg.RecentPatterns[0])
}

func TestRun_OverridesAndName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	_, stderr, err := runWith(t, dir, "-garment", "waistband", "-name", "My Band",
		"-set", "waist=80, wb_width=6", "-out", dir)
	require.NoError(t, err, stderr)

	p, err := project.LoadPattern(filepath.Join(dir, "My_Band.stitch.json"))
	require.NoError(t, err)
	assert.Equal(t, "My Band", p.Name)
	assert.Equal(t, "waistband", p.Garment)
	assert.Len(t, p.Panels, 2)
}

func TestRun_ParamsFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	csvPath := filepath.Join(dir, "me.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,value,unit\nWaist,760,mm\nLength,0.5,m\n"), 0o644))

	_, stderr, err := runWith(t, dir, "-params", csvPath, "-out", dir)
	require.NoError(t, err, stderr)
	_, err = os.Stat(filepath.Join(dir, "panel_skirt.stitch.json"))
	assert.NoError(t, err)
}

func TestRun_SaveAndUseTemplate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	_, stderr, err := runWith(t, dir, "-set", "ruffle=1.6", "-save-template", "full", "-out", dir)
	require.NoError(t, err, stderr)

	templates, err := project.LoadTemplates(filepath.Join(dir, "cfg", "templates.json"))
	require.NoError(t, err)
	tmpl := templates.FindByName("full")
	require.NotNil(t, tmpl)
	assert.Equal(t, "panel_skirt", tmpl.Garment)
	assert.InDelta(t, 1.6, tmpl.Params["ruffle"], 1e-9)
	assert.InDelta(t, 60.0, tmpl.Params["length"], 1e-9)

	_, stderr, err = runWith(t, dir, "-template", "full", "-name", "again", "-out", dir)
	require.NoError(t, err, stderr)

	_, _, err = runWith(t, dir, "-template", "full", "-garment", "waistband", "-out", dir)
	assert.ErrorContains(t, err, "not a waistband")
}

func TestRun_FabricAndCompare(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	out, stderr, err := runWith(t, dir, "-fabric", "Linen 140", "-compare", "-out", dir)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, stderr, "width=140")

	_, _, err = runWith(t, dir, "-fabric", "Silk 90", "-out", dir)
	assert.ErrorContains(t, err, `fabric "Silk 90" not in inventory`)
}

func TestRun_FromDXF(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	_, stderr, err := runWith(t, dir, "-dxf", "-out", dir)
	require.NoError(t, err, stderr)

	_, stderr, err = runWith(t, dir, "-from-dxf", filepath.Join(dir, "panel_skirt.dxf"), "-out", filepath.Join(dir, "re"))
	require.NoError(t, err, stderr)

	p, err := project.LoadPattern(filepath.Join(dir, "re", "panel_skirt.stitch.json"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"wb_front", "wb_back", "skirt_front", "skirt_back"}, p.PanelNames())
	assert.Empty(t, p.Stitches)
}

func TestRun_Backup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	backup := filepath.Join(dir, "backup.json")
	_, stderr, err := runWith(t, dir, "-backup", backup, "-out", dir)
	require.NoError(t, err, stderr)

	data, err := project.ImportAllData(backup)
	require.NoError(t, err)
	assert.Equal(t, project.BackupVersion, data.Version)
	assert.Equal(t, "cm", data.Config.Units)
	assert.NotEmpty(t, data.Inventory.Fabrics)
	assert.NotEmpty(t, data.Config.RecentPatterns)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown garment", []string{"-garment", "cape"}, "unknown garment"},
		{"bad override", []string{"-set", "waist"}, "want name=value"},
		{"bad number", []string{"-set", "waist=wide"}, `-set "waist=wide"`},
		{"unknown param", []string{"-set", "sleeves=2"}, "sleeves"},
		{"missing template", []string{"-template", "nope"}, `template "nope" not found`},
		{"stray argument", []string{"extra"}, "unexpected arguments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runIn(t, append(tt.args, "-out", t.TempDir())...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseSet(t *testing.T) {
	d, err := parseSet(" Waist Level = 98 ,ruffle=1.2,")
	require.NoError(t, err)
	assert.Equal(t, 98.0, d["waist_level"])
	assert.Equal(t, 1.2, d["ruffle"])

	d, err = parseSet("")
	require.NoError(t, err)
	assert.Empty(t, d)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a_b_c", fileName("a/b c"))
	assert.Equal(t, "pattern", fileName("  "))
	assert.True(t, strings.HasPrefix(fileName("skirt:v2"), "skirt_"))
}
