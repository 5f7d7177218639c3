package geom

import "github.com/shiffman/toxiclibs/pkg/math"

// Mesh is a triangle soup. Faces carry their own corner positions; shared
// vertices are identified by exact position equality.
type Mesh struct {
	Name  string
	Faces []Triangle
}

// NewMesh creates an empty mesh with room for capacity faces.
func NewMesh(name string, capacity int) *Mesh {
	return &Mesh{
		Name:  name,
		Faces: make([]Triangle, 0, capacity),
	}
}

// AddFace appends the triangle a, b, c.
func (m *Mesh) AddFace(a, b, c math.Vec3) {
	m.Faces = append(m.Faces, Triangle{A: a, B: b, C: c})
}

// AddMesh appends all faces of other.
func (m *Mesh) AddMesh(other *Mesh) {
	m.Faces = append(m.Faces, other.Faces...)
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Bounds returns the bounding box of all face corners.
func (m *Mesh) Bounds() AABB {
	box := EmptyAABB()
	for _, f := range m.Faces {
		box.Extend(f.A)
		box.Extend(f.B)
		box.Extend(f.C)
	}
	return box
}

// Centroid returns the area-weighted centre of the surface.
func (m *Mesh) Centroid() math.Vec3 {
	var sum math.Vec3
	var total float32
	for _, f := range m.Faces {
		a := f.Area()
		sum = sum.Add(f.Centroid().Scale(a))
		total += a
	}
	if total == 0 {
		return math.Vec3{}
	}
	return sum.Scale(1 / total)
}

// SurfaceArea returns the sum of all face areas.
func (m *Mesh) SurfaceArea() float32 {
	var total float32
	for _, f := range m.Faces {
		total += f.Area()
	}
	return total
}

// Volume returns the signed volume enclosed by the mesh. It is positive for a
// closed mesh whose faces point outward and meaningless for an open one.
func (m *Mesh) Volume() float32 {
	var sum float64
	for _, f := range m.Faces {
		sum += float64(f.A.Dot(f.B.Cross(f.C)))
	}
	return float32(sum / 6)
}

// FlipFaces reverses the winding of every face.
func (m *Mesh) FlipFaces() {
	for i, f := range m.Faces {
		m.Faces[i] = f.Flipped()
	}
}

// Edge is an undirected edge between two positions. A always sorts before B.
type Edge struct {
	A, B math.Vec3
}

// NewEdge returns the canonical edge between p and q.
func NewEdge(p, q math.Vec3) Edge {
	if lessVec(q, p) {
		p, q = q, p
	}
	return Edge{A: p, B: q}
}

func lessVec(a, b math.Vec3) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}

// Edges counts how many faces use each undirected edge.
func (m *Mesh) Edges() map[Edge]int {
	edges := make(map[Edge]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		edges[NewEdge(f.A, f.B)]++
		edges[NewEdge(f.B, f.C)]++
		edges[NewEdge(f.C, f.A)]++
	}
	return edges
}

// IsClosed reports whether every edge is shared by exactly two faces.
func (m *Mesh) IsClosed() bool {
	if len(m.Faces) == 0 {
		return false
	}
	for _, n := range m.Edges() {
		if n != 2 {
			return false
		}
	}
	return true
}

// VertexNormals returns one smoothed normal per face corner, in face order
// (A, B, C of face 0, then face 1, ...). Corners at the same position share
// the area-weighted average of the adjacent face normals.
func (m *Mesh) VertexNormals() []math.Vec3 {
	acc := make(map[math.Vec3]math.Vec3, len(m.Faces))
	for _, f := range m.Faces {
		// Unnormalized cross product weights by area.
		n := f.B.Sub(f.A).Cross(f.C.Sub(f.A))
		acc[f.A] = acc[f.A].Add(n)
		acc[f.B] = acc[f.B].Add(n)
		acc[f.C] = acc[f.C].Add(n)
	}

	normals := make([]math.Vec3, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		normals = append(normals,
			acc[f.A].Normalize(),
			acc[f.B].Normalize(),
			acc[f.C].Normalize(),
		)
	}
	return normals
}
