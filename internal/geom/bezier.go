package geom

// arcSamples is the polyline resolution used for curve arc length.
const arcSamples = 64

// Sample evaluates the edge start->end with the given curvature at n+1
// evenly spaced parameters. It works on raw coordinates so serialized
// panels can be linearized without rebuilding edges.
func Sample(start, end Point2D, c *Curvature, n int) []Point2D {
	if n < 1 {
		n = 1
	}
	if c == nil || len(c.Control) == 0 {
		return []Point2D{start, end}
	}
	ctrl := controlPolygon(start, end, c)
	pts := make([]Point2D, n+1)
	for i := 0; i <= n; i++ {
		pts[i] = bezierPoint(ctrl, float64(i)/float64(n))
	}
	pts[0], pts[n] = start, end
	return pts
}

// controlPolygon converts relative control points to absolute ones.
func controlPolygon(start, end Point2D, c *Curvature) []Point2D {
	pts := []Point2D{start}
	if c != nil {
		chord := end.Sub(start)
		perp := chord.Perp()
		for _, cp := range c.Control {
			pts = append(pts, start.Add(chord.Scale(cp.X)).Add(perp.Scale(cp.Y)))
		}
	}
	return append(pts, end)
}

// bezierPoint evaluates a Bezier curve of any degree with de Casteljau.
func bezierPoint(ctrl []Point2D, t float64) Point2D {
	work := append([]Point2D(nil), ctrl...)
	for n := len(work) - 1; n > 0; n-- {
		for i := 0; i < n; i++ {
			work[i] = work[i].Lerp(work[i+1], t)
		}
	}
	return work[0]
}

func polylineLength(pts []Point2D) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Dist(pts[i])
	}
	return total
}
