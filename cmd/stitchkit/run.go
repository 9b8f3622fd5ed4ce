package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/StitchKit/internal/assembly"
	"github.com/piwi3910/StitchKit/internal/engine"
	"github.com/piwi3910/StitchKit/internal/export"
	"github.com/piwi3910/StitchKit/internal/garment"
	"github.com/piwi3910/StitchKit/internal/gcode"
	"github.com/piwi3910/StitchKit/internal/importer"
	"github.com/piwi3910/StitchKit/internal/model"
	"github.com/piwi3910/StitchKit/internal/pattern"
	"github.com/piwi3910/StitchKit/internal/project"
)

// maxRecent bounds the recent patterns list in the config.
const maxRecent = 10

func run(args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	log := newLogger(stderr, o.verbose)
	pattern.SetLogger(log)

	if o.list {
		for _, k := range garment.Kinds() {
			fmt.Fprintf(stdout, "%-12s %s\n", k, garment.Describe(k))
		}
		return nil
	}

	if o.configPath == "" {
		o.configPath = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dir := filepath.Dir(o.configPath)
	invPath := filepath.Join(dir, filepath.Base(project.DefaultInventoryPath()))
	tmplPath := filepath.Join(dir, filepath.Base(project.DefaultTemplatePath()))
	inv, err := project.LoadInventory(invPath)
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}
	templates, err := project.LoadTemplates(tmplPath)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	c, kind, err := buildComponent(o, cfg, &templates, tmplPath)
	if err != nil {
		return err
	}

	opts := assembly.OptionsFromConfig(cfg)
	opts.Name = o.name
	opts.Garment = kind
	res, err := assembly.Assemble(c, opts)
	if err != nil {
		return err
	}
	p := res.Pattern
	log.Info("pattern assembled", "name", p.Name, "panels", len(p.Panels), "stitches", len(p.Stitches), "warnings", len(res.Warnings))

	settings := cfg.LayoutSettings()
	var fabric *model.FabricPreset
	if o.fabric != "" {
		if fabric = inv.FindFabricByName(o.fabric); fabric == nil {
			return fmt.Errorf("fabric %q not in inventory (have %v)", o.fabric, inv.FabricNames())
		}
		fabric.ApplyToSettings(&settings)
	}
	m, err := engine.New(settings).Layout(p)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if fabric != nil && !fabric.Fits(m) {
		log.Warn("marker is longer than the fabric on hand", "fabric", fabric.Name, "have", fabric.Length, "need", m.Length)
	}
	log.Info("marker laid out", "width", m.FabricWidth, "length", m.Length,
		"efficiency", fmt.Sprintf("%.1f%%", m.Efficiency()), "unplaced", len(m.Unplaced))
	for _, u := range m.Unplaced {
		log.Warn("panel does not fit the fabric", "panel", u.ID, "width", u.Width, "height", u.Height)
	}

	if o.compare {
		pieces, err := engine.Pieces(p, settings.CurveSamples)
		if err != nil {
			return err
		}
		for _, r := range engine.CompareScenarios(engine.BuildDefaultScenarios(settings, inv), pieces) {
			fmt.Fprintf(stdout, "%-28s length %7.1f  waste %5.1f%%  unplaced %d\n",
				r.Scenario.Name, r.Length, r.WastePercent, r.UnplacedCount)
		}
	}

	base := filepath.Join(o.outDir, fileName(p.Name))
	patternPath := base + project.PatternExt
	if err := project.SavePattern(patternPath, p); err != nil {
		return err
	}
	written := []string{patternPath}
	if o.dxf {
		if err := export.ExportDXF(base+".dxf", p, &m); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
		written = append(written, base+".dxf")
	}
	if o.pdf {
		if err := export.ExportPDF(base+".pdf", p, &m, cfg); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
		written = append(written, base+".pdf")
	}
	if o.labels {
		if err := export.ExportLabels(base+"-labels.pdf", p, &m); err != nil {
			return fmt.Errorf("label export: %w", err)
		}
		written = append(written, base+"-labels.pdf")
	}
	if o.xlsx {
		if err := export.ExportSeamReport(base+"-seams.xlsx", p, res.Summaries); err != nil {
			return fmt.Errorf("seam report: %w", err)
		}
		written = append(written, base+"-seams.xlsx")
	}
	if o.gcode {
		gs := gcode.DefaultSettings()
		gs.Profile = o.cutter
		gs.SeamAllowance = o.seam
		code := gcode.New(gs).Generate(p, m)
		if err := os.WriteFile(base+".nc", []byte(code), 0o644); err != nil {
			return fmt.Errorf("cut file: %w", err)
		}
		sum := gcode.Summarize(gcode.Parse(code))
		log.Info("cut file written", "profile", gs.Profile, "cut_mm", fmt.Sprintf("%.0f", sum.CutLength),
			"travel_mm", fmt.Sprintf("%.0f", sum.TravelLength))
		written = append(written, base+".nc")
	}
	for _, w := range written {
		fmt.Fprintln(stdout, w)
	}

	cfg.AddRecent(patternPath, maxRecent)
	if err := project.SaveAppConfig(o.configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if o.backupPath != "" {
		if err := project.ExportAllData(o.backupPath, cfg, inv, templates); err != nil {
			return err
		}
		log.Info("backup written", "path", o.backupPath)
	}
	return nil
}

// buildComponent makes the component to assemble, either from DXF panels or
// through the garment registry. It returns the garment kind for the pattern.
func buildComponent(o options, cfg model.AppConfig, templates *model.TemplateStore, tmplPath string) (*pattern.Component, string, error) {
	if o.fromDXF != "" {
		result := importer.ImportDXF(o.fromDXF)
		for _, w := range result.Warnings {
			pattern.Logger().Warn("dxf import", "problem", w)
		}
		if len(result.Errors) > 0 {
			return nil, "", fmt.Errorf("import %s: %s", o.fromDXF, strings.Join(result.Errors, "; "))
		}
		panels, err := importer.BuildPanels(result)
		if err != nil {
			return nil, "", err
		}
		name := o.name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(o.fromDXF), filepath.Ext(o.fromDXF))
		}
		return pattern.NewComponent(name).AddPanel(panels...), "", nil
	}

	key := o.garment
	design := garment.Design{}
	if o.template != "" {
		t := templates.FindByName(o.template)
		if t == nil {
			return nil, "", fmt.Errorf("template %q not found (have %v)", o.template, templates.Names())
		}
		k, d, err := garment.FromTemplate(*t)
		if err != nil {
			return nil, "", err
		}
		if key != "" && key != string(k) {
			return nil, "", fmt.Errorf("template %q is a %s, not a %s", o.template, k, key)
		}
		key, design = string(k), d
	}
	if key == "" {
		key = cfg.DefaultGarment
	}
	kind, err := garment.Lookup(key)
	if err != nil {
		return nil, "", err
	}

	if o.paramsPath != "" {
		var result importer.ImportResult
		if strings.EqualFold(filepath.Ext(o.paramsPath), ".xlsx") {
			result = importer.ImportExcel(o.paramsPath)
		} else {
			result = importer.ImportCSV(o.paramsPath)
		}
		for _, w := range result.Warnings {
			pattern.Logger().Debug("measurement import", "note", w)
		}
		if len(result.Errors) > 0 {
			return nil, "", fmt.Errorf("import %s: %s", o.paramsPath, strings.Join(result.Errors, "; "))
		}
		for k, v := range result.Params {
			design[k] = v
		}
	}
	overrides, err := parseSet(o.set)
	if err != nil {
		return nil, "", err
	}
	for k, v := range overrides {
		design[k] = v
	}

	c, err := garment.Build(string(kind), design)
	if err != nil {
		return nil, "", err
	}
	if o.name != "" {
		c.Name = o.name
	}

	if o.saveTemplate != "" {
		full, err := garment.Resolve(kind, design)
		if err != nil {
			return nil, "", err
		}
		if old := templates.FindByName(o.saveTemplate); old != nil {
			templates.Remove(old.ID)
		}
		templates.Add(model.NewDesignTemplate(o.saveTemplate, garment.Describe(kind), string(kind), full))
		if err := project.SaveTemplates(tmplPath, *templates); err != nil {
			return nil, "", fmt.Errorf("save templates: %w", err)
		}
		pattern.Logger().Info("template saved", "name", o.saveTemplate)
	}
	return c, string(kind), nil
}

// parseSet reads "name=value" pairs separated by commas.
func parseSet(s string) (garment.Design, error) {
	d := garment.Design{}
	for _, kv := range strings.Split(s, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("-set %q: want name=value", kv)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("-set %q: %w", kv, err)
		}
		d[importer.NormalizeParamName(name)] = v
	}
	return d, nil
}

// fileName makes a pattern name safe to use as a file name.
func fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		return "pattern"
	}
	return strings.ReplaceAll(name, " ", "_")
}
