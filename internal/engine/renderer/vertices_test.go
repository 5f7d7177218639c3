package renderer

import (
	"testing"

	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

func flatQuad() *geom.Mesh {
	m := geom.NewMesh("quad", 2)
	a := math.Vec3{X: 0, Z: 0}
	b := math.Vec3{X: 0, Z: 1}
	c := math.Vec3{X: 1, Z: 0}
	d := math.Vec3{X: 1, Z: 1}
	m.AddFace(a, b, c)
	m.AddFace(c, b, d)
	return m
}

func TestMeshVertices(t *testing.T) {
	verts := MeshVertices(flatQuad())

	if len(verts) != 2*3*floatsPerVertex {
		t.Fatalf("len = %d, want %d", len(verts), 2*3*floatsPerVertex)
	}
	// Second corner of the first face is b = (0, 0, 1).
	if got := verts[floatsPerVertex : floatsPerVertex+3]; got[0] != 0 || got[1] != 0 || got[2] != 1 {
		t.Errorf("vertex 1 position = %v, want [0 0 1]", got)
	}
	for i := 0; i < len(verts); i += floatsPerVertex {
		n := math.Vec3{X: verts[i+3], Y: verts[i+4], Z: verts[i+5]}
		if !n.ApproxEqual(math.Up, 1e-6) {
			t.Errorf("vertex %d normal = %v, want up", i/floatsPerVertex, n)
		}
	}
}

func TestNormalLines(t *testing.T) {
	lines := NormalLines(flatQuad(), 0.5)

	if len(lines) != 2*6*floatsPerVertex {
		t.Fatalf("len = %d, want %d", len(lines), 2*6*floatsPerVertex)
	}
	start := math.Vec3{X: lines[0], Y: lines[1], Z: lines[2]}
	end := math.Vec3{X: lines[6], Y: lines[7], Z: lines[8]}
	if want := start.Add(math.Vec3{Y: 0.5}); end != want {
		t.Errorf("normal line ends at %v, want %v", end, want)
	}

	if NormalLines(flatQuad(), 0) != nil {
		t.Error("zero length should produce no lines")
	}
}

func TestEmptyMesh(t *testing.T) {
	m := geom.NewMesh("empty", 0)
	if len(MeshVertices(m)) != 0 || len(NormalLines(m, 1)) != 0 {
		t.Error("empty mesh should produce no vertices")
	}
}
