// Package geom provides the triangle, ray and mesh primitives the terrain
// package builds on.
package geom

import "github.com/shiffman/toxiclibs/pkg/math"

// Triangle is a triangle with counter-clockwise winding: the front face is the
// side from which A, B, C appear counter-clockwise.
type Triangle struct {
	A, B, C math.Vec3
}

// NewTriangle creates a triangle from three points.
func NewTriangle(a, b, c math.Vec3) Triangle {
	return Triangle{A: a, B: b, C: c}
}

// Normal returns the unit face normal (B-A)×(C-A).
// Degenerate triangles return the zero vector.
func (t Triangle) Normal() math.Vec3 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Normalize()
}

// Area returns the surface area.
func (t Triangle) Area() float32 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Length() * 0.5
}

// Centroid returns the average of the three corners.
func (t Triangle) Centroid() math.Vec3 {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3.0)
}

// Flipped returns the triangle with reversed winding.
func (t Triangle) Flipped() Triangle {
	return Triangle{A: t.A, B: t.C, C: t.B}
}

// IsDegenerate reports whether the triangle has no area.
func (t Triangle) IsDegenerate() bool {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)) == (math.Vec3{})
}
