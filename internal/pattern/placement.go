package pattern

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/StitchKit/internal/geom"
)

// linearSamples is the per-curve resolution used for bounding boxes and norms.
const linearSamples = 8

// rotationM44 builds the placement rotation as Rx*Ry*Rz.
func rotationM44(deg v3.Vec) sdf.M44 {
	return sdf.RotateX(sdf.DtoR(deg.X)).
		Mul(sdf.RotateY(sdf.DtoR(deg.Y))).
		Mul(sdf.RotateZ(sdf.DtoR(deg.Z)))
}

// transform returns the full 2D->3D placement matrix.
func (p *Panel) transform() sdf.M44 {
	return sdf.Translate3d(p.Translation).Mul(rotationM44(p.Rotation))
}

// PointTo3D maps a point in the panel plane to world coordinates.
func (p *Panel) PointTo3D(pt geom.Point2D) v3.Vec {
	return p.transform().MulPosition(v3.Vec{X: pt.X, Y: pt.Y})
}

// Pivot3D is the world position of the local origin.
func (p *Panel) Pivot3D() v3.Vec { return p.Translation }

// TranslateBy moves the panel by d.
func (p *Panel) TranslateBy(d v3.Vec) *Panel {
	p.Translation = p.Translation.Add(d)
	return p.Autonorm()
}

// TranslateTo places the local origin at t.
func (p *Panel) TranslateTo(t v3.Vec) *Panel {
	p.Translation = t
	return p.Autonorm()
}

// RotateTo sets the Euler rotation in degrees.
func (p *Panel) RotateTo(deg v3.Vec) *Panel {
	p.Rotation = deg
	return p.Autonorm()
}

// RotateBy applies delta (Euler degrees) on top of the current rotation.
func (p *Panel) RotateBy(delta v3.Vec) *Panel {
	p.Rotation = eulerMat(delta).mul(eulerMat(p.Rotation)).euler()
	return p.Autonorm()
}

// RotateAlign turns the panel so its normal points along v. A zero v
// leaves the panel alone.
func (p *Panel) RotateAlign(v v3.Vec) *Panel {
	if v.Length() <= geom.Tolerance {
		return p
	}
	r := alignMat(p.Norm(), v.Normalize())
	p.Rotation = r.mul(eulerMat(p.Rotation)).euler()
	return p.Autonorm()
}

// SetPivot moves the local origin to pt. With replicate set the translation
// is adjusted so the panel stays where it was in 3D.
func (p *Panel) SetPivot(pt geom.Point2D, replicate bool) *Panel {
	if replicate {
		p.Translation = p.PointTo3D(pt)
	}
	p.outline.Translate(pt.Scale(-1))
	return p
}

// TopCenterPivot puts the pivot at the middle of whichever 2D bounding box
// side sits highest in 3D.
func (p *Panel) TopCenterPivot() *Panel {
	lo, hi := p.bbox2D()
	mid := lo.Lerp(hi, 0.5)
	candidates := []geom.Point2D{
		geom.Pt(mid.X, hi.Y),
		geom.Pt(mid.X, lo.Y),
		geom.Pt(hi.X, mid.Y),
		geom.Pt(lo.X, mid.Y),
	}
	best, bestY := candidates[0], math.Inf(-1)
	for _, c := range candidates {
		if y := p.PointTo3D(c).Y; y > bestY {
			best, bestY = c, y
		}
	}
	return p.SetPivot(best, false)
}

// CenterX shifts the panel along X so its center lies on the YZ plane.
func (p *Panel) CenterX() *Panel {
	c := p.PointTo3D(p.Center2D())
	p.Translation.X -= c.X
	return p
}

// Norm returns the unit normal of the panel surface in world space. Each
// edge votes with the normal of the triangle it forms with the panel
// center; the average wins.
func (p *Panel) Norm() v3.Vec {
	pts := p.linearized()
	center := p.PointTo3D(mean(pts))
	var sum v3.Vec
	var first *v3.Vec
	for i := range pts {
		a := p.PointTo3D(pts[i])
		b := p.PointTo3D(pts[(i+1)%len(pts)])
		n := b.Sub(a).Cross(center.Sub(a))
		if n.Length() <= geom.Tolerance {
			continue
		}
		n = n.Normalize()
		if first == nil {
			first = &n
		}
		sum = sum.Add(n)
	}
	if first == nil {
		Logger().Warn("panel norm undefined, using +Z", "panel", p.Name)
		return rotationM44(p.Rotation).MulPosition(v3.Vec{Z: 1})
	}
	if sum.Length() <= geom.Tolerance {
		Logger().Warn("panel norm evaluation failed, using first edge", "panel", p.Name)
		return *first
	}
	return sum.Normalize()
}

// Autonorm reverses the outline when the surface normal points towards the
// world origin, so the right side of the fabric faces out.
func (p *Panel) Autonorm() *Panel {
	if p.Norm().Dot(p.Translation) < 0 {
		p.outline.Reverse()
	}
	return p
}

// Mirror reflects the panel across the world YZ plane.
func (p *Panel) Mirror() *Panel {
	p.outline.ReflectX()
	p.Translation.X = -p.Translation.X
	p.Rotation.Y = -p.Rotation.Y
	p.Rotation.Z = -p.Rotation.Z
	return p.Autonorm()
}

// BBox3D returns the world-space bounding box, with curves sampled.
func (p *Panel) BBox3D() sdf.Box3 {
	pts := p.linearized()
	first := p.PointTo3D(pts[0])
	box := sdf.Box3{Min: first, Max: first}
	for _, pt := range pts[1:] {
		v := p.PointTo3D(pt)
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}

// Center2D approximates the panel centroid as the mean of its sampled
// boundary points.
func (p *Panel) Center2D() geom.Point2D { return mean(p.linearized()) }

// linearized returns the outline as a closed polyline without the repeated
// closing point.
func (p *Panel) linearized() []geom.Point2D {
	var pts []geom.Point2D
	for _, e := range p.outline.Edges() {
		n := 1
		if e.IsCurve() {
			n = linearSamples
		}
		s := e.Sample(n)
		pts = append(pts, s[:len(s)-1]...)
	}
	return pts
}

func (p *Panel) bbox2D() (geom.Point2D, geom.Point2D) {
	pts := p.linearized()
	lo, hi := pts[0], pts[0]
	for _, pt := range pts[1:] {
		lo = geom.Pt(math.Min(lo.X, pt.X), math.Min(lo.Y, pt.Y))
		hi = geom.Pt(math.Max(hi.X, pt.X), math.Max(hi.Y, pt.Y))
	}
	return lo, hi
}

func mean(pts []geom.Point2D) geom.Point2D {
	var c geom.Point2D
	for _, pt := range pts {
		c = c.Add(pt)
	}
	return c.Scale(1 / float64(len(pts)))
}

// mat3 is a row-major rotation matrix. sdf.M44 does not expose its
// elements, which Euler decomposition needs.
type mat3 [3][3]float64

func eulerMat(deg v3.Vec) mat3 {
	x, y, z := sdf.DtoR(deg.X), sdf.DtoR(deg.Y), sdf.DtoR(deg.Z)
	rx := mat3{{1, 0, 0}, {0, math.Cos(x), -math.Sin(x)}, {0, math.Sin(x), math.Cos(x)}}
	ry := mat3{{math.Cos(y), 0, math.Sin(y)}, {0, 1, 0}, {-math.Sin(y), 0, math.Cos(y)}}
	rz := mat3{{math.Cos(z), -math.Sin(z), 0}, {math.Sin(z), math.Cos(z), 0}, {0, 0, 1}}
	return rx.mul(ry).mul(rz)
}

func (a mat3) mul(b mat3) mat3 {
	var m mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				m[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return m
}

func (a mat3) apply(v v3.Vec) v3.Vec {
	return v3.Vec{
		X: a[0][0]*v.X + a[0][1]*v.Y + a[0][2]*v.Z,
		Y: a[1][0]*v.X + a[1][1]*v.Y + a[1][2]*v.Z,
		Z: a[2][0]*v.X + a[2][1]*v.Y + a[2][2]*v.Z,
	}
}

// alignMat is the shortest rotation taking unit vector a onto unit vector b.
func alignMat(a, b v3.Vec) mat3 {
	c := a.Dot(b)
	if c < -1+1e-9 {
		// opposite: half turn about any axis perpendicular to a
		axis := a.Cross(v3.Vec{X: 1})
		if axis.Length() < 1e-6 {
			axis = a.Cross(v3.Vec{Y: 1})
		}
		axis = axis.Normalize()
		u := [3]float64{axis.X, axis.Y, axis.Z}
		var m mat3
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				m[i][j] = 2 * u[i] * u[j]
			}
			m[i][i]--
		}
		return m
	}
	v := a.Cross(b)
	k := mat3{{0, -v.Z, v.Y}, {v.Z, 0, -v.X}, {-v.Y, v.X, 0}}
	k2 := k.mul(k)
	f := 1 / (1 + c)
	var m mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = k[i][j] + k2[i][j]*f
		}
		m[i][i]++
	}
	return m
}

// euler decomposes an Rx*Ry*Rz matrix into degrees.
func (a mat3) euler() v3.Vec {
	sy := math.Max(-1, math.Min(1, a[0][2]))
	y := math.Asin(sy)
	var x, z float64
	if math.Abs(math.Cos(y)) > 1e-9 {
		x = math.Atan2(-a[1][2], a[2][2])
		z = math.Atan2(-a[0][1], a[0][0])
	} else {
		// gimbal lock: fold all of the remaining rotation into X
		x = math.Atan2(a[2][1], a[1][1])
	}
	return v3.Vec{X: sdf.RtoD(x), Y: sdf.RtoD(y), Z: sdf.RtoD(z)}
}
