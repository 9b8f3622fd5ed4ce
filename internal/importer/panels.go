package importer

import (
	"fmt"
	"math"

	"github.com/piwi3910/StitchKit/internal/geom"
	"github.com/piwi3910/StitchKit/internal/model"
	"github.com/piwi3910/StitchKit/internal/pattern"
)

// collinearTolerance is the largest cross product, relative to the squared
// segment lengths, at which a vertex counts as lying on a straight run.
const collinearTolerance = 1e-6

// BuildPanels turns imported shapes into panels with straight-edged,
// counter-clockwise outlines. Points on straight runs are merged so a
// rectangle drawn as many LINEs comes back with four edges.
func BuildPanels(result DXFResult) ([]*pattern.Panel, error) {
	if len(result.Shapes) == 0 {
		return nil, fmt.Errorf("no shapes to build panels from")
	}
	panels := make([]*pattern.Panel, 0, len(result.Shapes))
	for _, s := range result.Shapes {
		pts := simplify(s.Outline)
		if len(pts) < 3 {
			return nil, fmt.Errorf("shape %s: only %d distinct corners", s.Name, len(pts))
		}
		area := signedArea(pts)
		if math.Abs(area) <= geom.Tolerance {
			return nil, fmt.Errorf("shape %s: outline has no area", s.Name)
		}
		if area < 0 {
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		outline, err := geom.FromVerts(true, pts...)
		if err != nil {
			return nil, fmt.Errorf("shape %s: %w", s.Name, err)
		}
		p, err := pattern.NewPanel(s.Name, outline)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return panels, nil
}

// simplify drops repeated points and points in the middle of straight runs.
func simplify(o model.Outline) []geom.Point2D {
	var pts []geom.Point2D
	for _, p := range o {
		if len(pts) > 0 && pts[len(pts)-1].Near(p) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) > 1 && pts[0].Near(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := 0; i < len(pts) && len(pts) > 3; i++ {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			a, b := pts[i].Sub(prev), next.Sub(pts[i])
			cross := a.X*b.Y - a.Y*b.X
			if math.Abs(cross) <= collinearTolerance*a.Len()*b.Len() && a.Dot(b) > 0 {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				i--
			}
		}
	}
	return pts
}

// signedArea is positive for counter-clockwise outlines.
func signedArea(pts []geom.Point2D) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}
