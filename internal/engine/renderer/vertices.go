package renderer

import (
	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

// floatsPerVertex is position (3) + normal (3).
const floatsPerVertex = 6

// MeshVertices flattens mesh into interleaved position+normal triangles
// using smooth vertex normals.
func MeshVertices(mesh *geom.Mesh) []float32 {
	normals := mesh.VertexNormals()
	out := make([]float32, 0, len(mesh.Faces)*3*floatsPerVertex)
	for i, f := range mesh.Faces {
		for j, p := range [3]math.Vec3{f.A, f.B, f.C} {
			out = appendVertex(out, p, normals[i*3+j])
		}
	}
	return out
}

// NormalLines returns one line segment per face corner, from the vertex
// along its normal for length units.
func NormalLines(mesh *geom.Mesh, length float32) []float32 {
	if length <= 0 {
		return nil
	}
	normals := mesh.VertexNormals()
	out := make([]float32, 0, len(mesh.Faces)*6*floatsPerVertex)
	for i, f := range mesh.Faces {
		for j, p := range [3]math.Vec3{f.A, f.B, f.C} {
			n := normals[i*3+j]
			out = appendVertex(out, p, n)
			out = appendVertex(out, p.Add(n.Scale(length)), n)
		}
	}
	return out
}

func appendVertex(dst []float32, p, n math.Vec3) []float32 {
	return append(dst, p.X, p.Y, p.Z, n.X, n.Y, n.Z)
}
