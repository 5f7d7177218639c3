package geom

import "github.com/shiffman/toxiclibs/pkg/math"

// parallelEpsilon rejects rays running (almost) in the triangle plane.
const parallelEpsilon = 1e-7

// Ray is a half-line starting at Origin. Dir does not need to be normalized,
// but Intersection.Distance is measured in units of Dir.
type Ray struct {
	Origin math.Vec3
	Dir    math.Vec3
}

// NewRay creates a ray with a normalized direction.
func NewRay(origin, dir math.Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Intersection describes where a ray met a surface. The zero value means no
// intersection.
type Intersection struct {
	Hit      bool
	Point    math.Vec3
	Normal   math.Vec3
	Dir      math.Vec3
	Distance float32
}

// IntersectTriangle tests the ray against both faces of t using the
// Möller-Trumbore algorithm. Hits behind the origin are ignored.
func (r Ray) IntersectTriangle(t Triangle) (Intersection, bool) {
	e1 := t.B.Sub(t.A)
	e2 := t.C.Sub(t.A)

	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if det > -parallelEpsilon && det < parallelEpsilon {
		return Intersection{}, false
	}
	invDet := 1 / det

	s := r.Origin.Sub(t.A)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return Intersection{}, false
	}

	q := s.Cross(e1)
	v := r.Dir.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return Intersection{}, false
	}

	dist := e2.Dot(q) * invDet
	if dist < 0 {
		return Intersection{}, false
	}

	return Intersection{
		Hit:      true,
		Point:    r.At(dist),
		Normal:   t.Normal(),
		Dir:      r.Dir,
		Distance: dist,
	}, true
}

// IntersectPlaneY intersects the ray with the horizontal plane y = planeY.
func (r Ray) IntersectPlaneY(planeY float32) (math.Vec3, bool) {
	if r.Dir.Y > -parallelEpsilon && r.Dir.Y < parallelEpsilon {
		return math.Vec3{}, false
	}
	t := (planeY - r.Origin.Y) / r.Dir.Y
	if t < 0 {
		return math.Vec3{}, false
	}
	return r.At(t), true
}

// IntersectAABB tests the ray against a box using the slab method. It returns
// the entry distance, or the exit distance if the origin is inside the box.
func (r Ray) IntersectAABB(box AABB) (float32, bool) {
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}

	tmin := float32(-1e30)
	tmax := float32(1e30)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - origin[i]) / dir[i]
		t2 := (hi[i] - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
