package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/StitchKit/internal/export"
	"github.com/piwi3910/StitchKit/internal/model"
)

// defaultLayer is the DXF layer entities land on when none is set.
const defaultLayer = "0"

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// Shape is one closed outline read from a DXF file.
type Shape struct {
	Name    string        // layer name, or "shape N" for the default layer
	Layer   string        // source layer
	Outline model.Outline // moved so its bounding box starts at (0, 0)
	Width   float64
	Height  float64
}

// DXFResult holds the shapes found in a DXF file.
type DXFResult struct {
	Shapes   []Shape
	Errors   []string
	Warnings []string
}

// ImportDXF reads closed shapes from a DXF file. Each LWPOLYLINE, CIRCLE or
// chain of connected LINEs and ARCs on one layer becomes a Shape named after
// its layer. The marker layer written by export.ExportDXF is skipped.
func ImportDXF(path string) DXFResult {
	result := DXFResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	type layerOutline struct {
		layer   string
		outline model.Outline
	}
	var outlines []layerOutline
	segments := make(map[string][]segment)
	var layers []string

	for _, ent := range entities {
		layer := layerName(ent)
		if layer == export.MarkerLayer {
			continue
		}
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylineToOutline(e)
			if len(outline) >= 3 {
				outlines = append(outlines, layerOutline{layer, outline})
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			outlines = append(outlines, layerOutline{layer, circleToOutline(e, 64)})

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				if _, ok := segments[layer]; !ok {
					layers = append(layers, layer)
				}
				segments[layer] = append(segments[layer], pointsToSegments(pts)...)
			}

		case *entity.Line:
			if _, ok := segments[layer]; !ok {
				layers = append(layers, layer)
			}
			segments[layer] = append(segments[layer], segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	// Chain loose segments (LINEs and ARCs) into closed outlines per layer
	for _, layer := range layers {
		for _, co := range chainSegments(segments[layer], 0.01) {
			if len(co) >= 3 {
				outlines = append(outlines, layerOutline{layer, co})
			}
		}
	}

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	perLayer := make(map[string]int)
	for _, o := range outlines {
		perLayer[o.layer]++
	}
	seen := make(map[string]int)
	for i, o := range outlines {
		normalized := normalizeOutline(o.outline)
		min, max := normalized.BoundingBox()
		width := max.X - min.X
		height := max.Y - min.Y

		if width < 0.01 || height < 0.01 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f)", width, height))
			continue
		}

		seen[o.layer]++
		name := o.layer
		switch {
		case o.layer == defaultLayer:
			name = fmt.Sprintf("shape %d", i+1)
		case perLayer[o.layer] > 1:
			name = fmt.Sprintf("%s %d", o.layer, seen[o.layer])
		}
		result.Shapes = append(result.Shapes, Shape{
			Name:    name,
			Layer:   o.layer,
			Outline: normalized,
			Width:   width,
			Height:  height,
		})
	}

	return result
}

func layerName(ent entity.Entity) string {
	if l := ent.Layer(); l != nil && l.Name() != "" {
		return l.Name()
	}
	return defaultLayer
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an Outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := model.Point2D{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			nextIdx := (i + 1) % len(lw.Vertices)
			next := model.Point2D{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// The next vertex is added by its own iteration
			outline = append(outline, arcPts[:len(arcPts)-1]...)
		} else {
			outline = append(outline, current)
		}
	}

	return outline
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle;
// positive bulges turn counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, numSegments int) model.Outline {
	chord := p2.Sub(p1)
	chordLen := chord.Len()
	if chordLen < 1e-9 {
		return model.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	// The centre sits on the chord's perpendicular, left of the chord for
	// counter-clockwise arcs.
	perp := chord.Perp().Scale(1 / chordLen)
	if bulge < 0 {
		perp = perp.Scale(-1)
	}
	c := p1.Lerp(p2, 0.5).Add(perp.Scale(radius - sagitta))

	startAngle := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	endAngle := math.Atan2(p2.Y-c.Y, p2.X-c.X)
	if bulge < 0 {
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(model.Outline, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, model.Point2D{
			X: c.X + radius*math.Cos(angle),
			Y: c.Y + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, numSegments int) model.Outline {
	outline := make(model.Outline, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		outline[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return outline
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []model.Point2D {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]model.Point2D, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = model.Point2D{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []model.Point2D) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
func chainSegments(segs []segment, tolerance float64) []model.Outline {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []model.Outline

	for {
		startIdx := -1
		for i, u := range used {
			if !u {
				startIdx = i
				break
			}
		}
		if startIdx == -1 {
			break
		}

		chain := []model.Point2D{segs[startIdx].start, segs[startIdx].end}
		used[startIdx] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if tail.Dist(seg.start) <= tolerance {
					chain = append(chain, seg.end)
					used[i] = true
					changed = true
					break
				}
				if tail.Dist(seg.end) <= tolerance {
					chain = append(chain, seg.start)
					used[i] = true
					changed = true
					break
				}
			}
		}

		// Drop the duplicate closing point
		if len(chain) >= 3 && chain[0].Dist(chain[len(chain)-1]) <= tolerance {
			chain = chain[:len(chain)-1]
		}

		if len(chain) >= 3 {
			outlines = append(outlines, model.Outline(chain))
		}
	}

	// Largest first for a stable order
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].Area() > outlines[j].Area()
	})

	return outlines
}

// normalizeOutline translates the outline so its bounding box starts at (0, 0).
func normalizeOutline(o model.Outline) model.Outline {
	if len(o) == 0 {
		return o
	}
	min, _ := o.BoundingBox()
	return o.Translate(-min.X, -min.Y)
}
