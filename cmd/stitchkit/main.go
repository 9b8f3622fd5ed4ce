// StitchKit builds sewing patterns from garment generators, checks their
// seams, lays the panels out on fabric and exports the result.
//
// Build:
//
//	go build -o stitchkit ./cmd/stitchkit
//
// Example:
//
//	stitchkit -garment panel_skirt -set ruffle=1.5,slit=0.2 -out ./out -pdf -dxf -xlsx -gcode -seam 1.5
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/piwi3910/StitchKit/internal/gcode"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "stitchkit:", err)
		os.Exit(1)
	}
}

// options are the parsed command line flags.
type options struct {
	garment      string
	name         string
	outDir       string
	configPath   string
	paramsPath   string
	set          string
	template     string
	saveTemplate string
	fabric       string
	fromDXF      string
	backupPath   string
	cutter       string
	seam         float64
	dxf          bool
	pdf          bool
	xlsx         bool
	labels       bool
	gcode        bool
	compare      bool
	list         bool
	verbose      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("stitchkit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.garment, "garment", "", "garment to build (default from config)")
	fs.StringVar(&o.name, "name", "", "pattern name (default: garment name)")
	fs.StringVar(&o.outDir, "out", ".", "output directory")
	fs.StringVar(&o.configPath, "config", "", "config file (default ~/.stitchkit/config.json)")
	fs.StringVar(&o.paramsPath, "params", "", "CSV or XLSX file of design measurements")
	fs.StringVar(&o.set, "set", "", "design overrides, e.g. waist=72,length=55")
	fs.StringVar(&o.template, "template", "", "start from a saved design template")
	fs.StringVar(&o.saveTemplate, "save-template", "", "save the design as a template under this name")
	fs.StringVar(&o.fabric, "fabric", "", "lay out on this inventory fabric")
	fs.StringVar(&o.fromDXF, "from-dxf", "", "read panels from a DXF file instead of a garment")
	fs.StringVar(&o.backupPath, "backup", "", "write a backup of config, inventory and templates")
	fs.BoolVar(&o.dxf, "dxf", false, "write a DXF marker")
	fs.BoolVar(&o.pdf, "pdf", false, "write a PDF with marker and panel pages")
	fs.BoolVar(&o.xlsx, "xlsx", false, "write an XLSX seam report")
	fs.BoolVar(&o.labels, "labels", false, "write a PDF sheet of panel labels")
	fs.BoolVar(&o.gcode, "gcode", false, "write a cutting table file (.nc)")
	fs.StringVar(&o.cutter, "cutter", gcode.DefaultSettings().Profile,
		"cutter profile: "+strings.Join(gcode.ProfileNames(), ", "))
	fs.Float64Var(&o.seam, "seam", 0, "seam allowance added around cut panels")
	fs.BoolVar(&o.compare, "compare", false, "print marker lengths for alternative layouts")
	fs.BoolVar(&o.list, "list", false, "list garments and exit")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
