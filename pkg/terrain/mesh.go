package terrain

import (
	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

// MeshName is the name given to meshes built from a terrain.
const MeshName = "terrain"

func (t *Terrain) vertex(x, z int) math.Vec3 {
	return t.vertices[z*t.width+x]
}

// SurfaceFaceCount returns the number of triangles ToMesh produces.
func (t *Terrain) SurfaceFaceCount() int {
	if t.width < 2 || t.depth < 2 {
		return 0
	}
	return 2 * (t.width - 1) * (t.depth - 1)
}

// SolidFaceCount returns the number of triangles ToSolidMesh produces.
func (t *Terrain) SolidFaceCount() int {
	if t.width < 2 || t.depth < 2 {
		return 0
	}
	perimeter := 2*(t.width-1) + 2*(t.depth-1)
	// Two skirt triangles plus one cap triangle per boundary segment.
	return t.SurfaceFaceCount() + 3*perimeter
}

// ToMesh returns the terrain surface as a triangle mesh. Every grid quad is
// split along the diagonal from (x, z-1) to (x-1, z). Faces wind
// counter-clockwise seen from above, so a flat terrain has normals of +Y.
// Grids narrower than two cells on either axis yield an empty mesh.
func (t *Terrain) ToMesh() *geom.Mesh {
	mesh := geom.NewMesh(MeshName, t.SurfaceFaceCount())
	if t.width < 2 || t.depth < 2 {
		return mesh
	}
	for z := 1; z < t.depth; z++ {
		for x := 1; x < t.width; x++ {
			v00 := t.vertex(x-1, z-1)
			v10 := t.vertex(x, z-1)
			v01 := t.vertex(x-1, z)
			v11 := t.vertex(x, z)
			mesh.AddFace(v00, v01, v10)
			mesh.AddFace(v10, v01, v11)
		}
	}
	return mesh
}

// ToSolidMesh returns the terrain surface closed into a watertight volume,
// suitable for 3D printing or CNC fabrication. Vertical skirts drop every
// boundary edge down to groundLevel and a bottom cap closes the footprint.
// All faces point outward as long as the terrain stays above groundLevel.
//
// The cap is a fan around the footprint centre that reuses every boundary
// ground vertex, so it meets the skirts without T-junctions.
func (t *Terrain) ToSolidMesh(groundLevel float32) *geom.Mesh {
	mesh := geom.NewMesh(MeshName, t.SolidFaceCount())
	if t.width < 2 || t.depth < 2 {
		return mesh
	}
	mesh.AddMesh(t.ToMesh())

	minX, maxX := t.worldX(0), t.worldX(t.width-1)
	minZ, maxZ := t.worldZ(0), t.worldZ(t.depth-1)
	ground := func(x, z float32) math.Vec3 {
		return math.Vec3{X: x, Y: groundLevel, Z: z}
	}
	center := ground((minX+maxX)*0.5, (minZ+maxZ)*0.5)
	last := t.width - 1
	front := t.depth - 1

	for z := 1; z < t.depth; z++ {
		za, zb := t.worldZ(z-1), t.worldZ(z)

		// left, facing -X
		a, b := ground(minX, za), ground(minX, zb)
		mesh.AddFace(t.vertex(0, z-1), a, t.vertex(0, z))
		mesh.AddFace(t.vertex(0, z), a, b)
		mesh.AddFace(center, b, a)

		// right, facing +X
		a, b = ground(maxX, za), ground(maxX, zb)
		mesh.AddFace(t.vertex(last, z), b, t.vertex(last, z-1))
		mesh.AddFace(t.vertex(last, z-1), b, a)
		mesh.AddFace(center, a, b)
	}

	for x := 1; x < t.width; x++ {
		xa, xb := t.worldX(x-1), t.worldX(x)

		// back, facing -Z
		a, b := ground(xa, minZ), ground(xb, minZ)
		mesh.AddFace(t.vertex(x, 0), b, t.vertex(x-1, 0))
		mesh.AddFace(t.vertex(x-1, 0), b, a)
		mesh.AddFace(center, a, b)

		// front, facing +Z
		a, b = ground(xa, maxZ), ground(xb, maxZ)
		mesh.AddFace(t.vertex(x-1, front), a, t.vertex(x, front))
		mesh.AddFace(t.vertex(x, front), a, b)
		mesh.AddFace(center, b, a)
	}

	return mesh
}
