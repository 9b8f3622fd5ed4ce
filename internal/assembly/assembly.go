// Package assembly turns a component tree into a serialisable pattern:
// panels are flattened to vertex/edge lists and every stitch is resolved
// into explicit edge pairs.
package assembly

import (
	"errors"
	"fmt"
	"math"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/model"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

// ErrStitchMismatch is returned when the two sides of a stitch have a
// different number of edges.
var ErrStitchMismatch = errors.New("stitch sides have different edge counts")

// Options controls assembly.
type Options struct {
	Name            string  // pattern name, defaults to the component name
	Garment         string  // garment kind recorded in the pattern
	Units           string
	LengthTolerance float64 // relative length mismatch tolerated per stitch
}

// DefaultOptions returns the assembly defaults.
func DefaultOptions() Options {
	return OptionsFromConfig(model.DefaultAppConfig())
}

// OptionsFromConfig derives assembly options from the app config.
func OptionsFromConfig(cfg model.AppConfig) Options {
	return Options{
		Units:           cfg.Units,
		LengthTolerance: cfg.LengthTolerance,
	}
}

// Result is the outcome of a successful assembly. Warnings describe stitches
// that assembled but look geometrically wrong.
type Result struct {
	Pattern   model.Pattern
	Summaries []model.StitchSummary
	Warnings  []string
}

// edgeKey locates an edge in the assembled pattern.
type edgeKey struct {
	panel *pattern.Panel
	id    geom.EdgeID
}

// Assemble serialises every panel of c and resolves its stitches.
func Assemble(c *pattern.Component, opts Options) (Result, error) {
	name := opts.Name
	if name == "" {
		name = c.Name
	}
	res := Result{Pattern: model.NewPattern(name)}
	res.Pattern.Garment = opts.Garment
	if opts.Units != "" {
		res.Pattern.Units = opts.Units
	}

	index := make(map[edgeKey]int)
	for _, p := range c.AllPanels() {
		if _, dup := res.Pattern.Panels[p.Name]; dup {
			return Result{}, fmt.Errorf("assemble %s: duplicate panel name %q", name, p.Name)
		}
		ps, ids, err := SerializePanel(p)
		if err != nil {
			return Result{}, fmt.Errorf("assemble %s: %w", name, err)
		}
		res.Pattern.AddPanel(p.Name, ps)
		for i, id := range ids {
			index[edgeKey{p, id}] = i
		}
	}

	for i, st := range c.AllStitches() {
		specs, sum, warns, err := resolveStitch(i, st, index, opts.LengthTolerance)
		if err != nil {
			return Result{}, fmt.Errorf("assemble %s: stitch %d: %w", name, i, err)
		}
		res.Pattern.Stitches = append(res.Pattern.Stitches, specs...)
		res.Summaries = append(res.Summaries, sum)
		for _, w := range warns {
			pattern.Logger().Warn("stitch validity", "pattern", name, "stitch", i, "problem", w)
		}
		res.Warnings = append(res.Warnings, warns...)
	}
	return res, nil
}

// SerializePanel flattens p relative to the start of its first edge. The
// panel itself is not modified. The returned IDs give the edge at each
// serialised index.
func SerializePanel(p *pattern.Panel) (model.PanelSpec, []geom.EdgeID, error) {
	if err := p.Validate(); err != nil {
		return model.PanelSpec{}, nil, err
	}
	origin := p.EdgeAt(0).Start.Point2D
	t := p.PointTo3D(origin)
	ps := model.PanelSpec{
		Translation: model.Vec3{t.X, t.Y, t.Z},
		Rotation:    model.Vec3{p.Rotation.X, p.Rotation.Y, p.Rotation.Z},
		Vertices:    []model.Point2D{{}},
	}
	ids := make([]geom.EdgeID, p.Len())
	for i := 0; i < p.Len(); i++ {
		e := p.EdgeAt(i)
		start, end := e.Start.Sub(origin), e.End.Sub(origin)
		last := len(ps.Vertices) - 1
		if !ps.Vertices[last].Near(start) {
			ps.Vertices = append(ps.Vertices, start)
			last++
		}
		ps.Vertices = append(ps.Vertices, end)
		spec := model.EdgeSpec{Endpoints: [2]int{last, last + 1}}
		if e.IsCurve() {
			spec.Curvature = &model.CurvatureSpec{
				Type:   e.Curve.Kind.String(),
				Params: append([]model.Point2D(nil), e.Curve.Control...),
			}
		}
		ps.Edges = append(ps.Edges, spec)
		ids[i] = e.ID
	}
	// the loop is closed, so the final vertex duplicates the first
	if n := len(ps.Vertices); n > 1 && ps.Vertices[n-1].Near(ps.Vertices[0]) {
		ps.Vertices = ps.Vertices[:n-1]
		ps.Edges[len(ps.Edges)-1].Endpoints[1] = 0
	}
	return ps, ids, nil
}

// Aligned holds both sides of a stitch, oriented and ordered so that edge
// k of A is sewn to edge k of B.
type Aligned struct {
	A, B      *geom.EdgeSequence
	PanelsA   []*pattern.Panel
	PanelsB   []*pattern.Panel
	IndexB    []int // position in the B interface of each aligned B edge
	ReversedB bool
}

// Align orients both sides of a stitch and reverses side B as a whole when
// it runs against side A in 3D.
func Align(st pattern.Stitch) (Aligned, error) {
	oa, err := st.A.OrientedEdges()
	if err != nil {
		return Aligned{}, fmt.Errorf("side A: %w", err)
	}
	ob, err := st.B.OrientedEdges()
	if err != nil {
		return Aligned{}, fmt.Errorf("side B: %w", err)
	}
	if oa.Len() != ob.Len() {
		return Aligned{}, fmt.Errorf("%w: %d vs %d", ErrStitchMismatch, oa.Len(), ob.Len())
	}
	al := Aligned{A: oa, B: ob, PanelsA: st.A.Panels(), PanelsB: st.B.Panels()}
	n := oa.Len()
	al.IndexB = make([]int, n)
	for k := range al.IndexB {
		al.IndexB[k] = k
	}

	a0 := al.PanelsA[0].PointTo3D(oa.At(0).Start.Point2D)
	a1 := al.PanelsA[n-1].PointTo3D(oa.At(-1).End.Point2D)
	b0 := al.PanelsB[0].PointTo3D(ob.At(0).Start.Point2D)
	b1 := al.PanelsB[n-1].PointTo3D(ob.At(-1).End.Point2D)
	if dist(a0, b1)+dist(a1, b0) < dist(a0, b0)+dist(a1, b1) {
		al.B.Reverse()
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			al.PanelsB[i], al.PanelsB[j] = al.PanelsB[j], al.PanelsB[i]
			al.IndexB[i], al.IndexB[j] = al.IndexB[j], al.IndexB[i]
		}
		al.ReversedB = true
	}
	return al, nil
}

func resolveStitch(i int, st pattern.Stitch, index map[edgeKey]int, tol float64) ([]model.StitchSpec, model.StitchSummary, []string, error) {
	al, err := Align(st)
	if err != nil {
		return nil, model.StitchSummary{}, nil, err
	}
	refsA, refsB := st.A.Refs(), st.B.Refs()
	n := al.A.Len()
	sum := model.StitchSummary{
		Index:     i,
		SideA:     sideName(st.A.Panels()),
		SideB:     sideName(st.B.Panels()),
		EdgePairs: n,
		Reversed:  al.ReversedB,
		Valid:     true,
	}
	var warns []string
	specs := make([]model.StitchSpec, n)
	for k := 0; k < n; k++ {
		j := al.IndexB[k]
		ia, ok := index[edgeKey{refsA[k].Panel, refsA[k].ID}]
		if !ok {
			return nil, sum, nil, fmt.Errorf("side A edge %d: panel %s is not part of the assembly", k, refsA[k].Panel.Name)
		}
		ib, ok := index[edgeKey{refsB[j].Panel, refsB[j].ID}]
		if !ok {
			return nil, sum, nil, fmt.Errorf("side B edge %d: panel %s is not part of the assembly", j, refsB[j].Panel.Name)
		}
		specs[k] = model.StitchSpec{
			{Panel: refsA[k].Panel.Name, Edge: ia},
			{Panel: refsB[j].Panel.Name, Edge: ib},
		}

		ea, eb := al.A.At(k), al.B.At(k)
		as, ae := al.PanelsA[k].PointTo3D(ea.Start.Point2D), al.PanelsA[k].PointTo3D(ea.End.Point2D)
		bs, be := al.PanelsB[k].PointTo3D(eb.Start.Point2D), al.PanelsB[k].PointTo3D(eb.End.Point2D)
		straight := dist(as, bs) + dist(ae, be)
		crossed := dist(as, be) + dist(ae, bs)
		if crossed < straight-geom.Tolerance {
			sum.Valid = false
			warns = append(warns, fmt.Sprintf("stitch %d: edge pair %d (%s/%s) runs in opposite directions",
				i, k, refsA[k].Panel.Name, refsB[j].Panel.Name))
		}

		la, lb := ea.Length(), eb.Length()
		sum.FabricA += la
		sum.FabricB += lb
		sum.LengthA += la / st.A.Coefficient(k)
		sum.LengthB += lb / st.B.Coefficient(j)
	}
	if m := sum.Mismatch(); m > tol {
		sum.Valid = false
		warns = append(warns, fmt.Sprintf("stitch %d: %s is %.2f long but %s is %.2f (%.1f%% apart)",
			i, sum.SideA, sum.LengthA, sum.SideB, sum.LengthB, m*100))
	}
	return specs, sum, warns, nil
}

func sideName(panels []*pattern.Panel) string {
	var names []string
	for _, p := range panels {
		if len(names) == 0 || names[len(names)-1] != p.Name {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, "+")
}

func dist(a, b v3.Vec) float64 {
	d := a.Sub(b)
	return math.Sqrt(d.Dot(d))
}
