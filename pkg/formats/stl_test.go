package formats

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

func testMesh() *geom.Mesh {
	m := geom.NewMesh("terrain", 2)
	m.AddFace(math.Vec3{X: 0, Y: 0, Z: 0}, math.Vec3{X: 0, Y: 0, Z: 1}, math.Vec3{X: 1, Y: 0, Z: 0})
	m.AddFace(math.Vec3{X: 1, Y: 0.5, Z: 0}, math.Vec3{X: 0, Y: 0, Z: 1}, math.Vec3{X: 1.25, Y: -3, Z: 1})
	return m
}

func sameFaces(t *testing.T, got, want *geom.Mesh) {
	t.Helper()
	if got.FaceCount() != want.FaceCount() {
		t.Fatalf("FaceCount() = %d, want %d", got.FaceCount(), want.FaceCount())
	}
	for i := range want.Faces {
		if got.Faces[i] != want.Faces[i] {
			t.Errorf("face %d = %+v, want %+v", i, got.Faces[i], want.Faces[i])
		}
	}
}

func TestSTLBinary_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTLBinary(&buf, testMesh()); err != nil {
		t.Fatalf("WriteSTLBinary failed: %v", err)
	}
	if want := 80 + 4 + 2*50; buf.Len() != want {
		t.Errorf("encoded size = %d, want %d", buf.Len(), want)
	}

	mesh, err := ReadSTLBinary(&buf)
	if err != nil {
		t.Fatalf("ReadSTLBinary failed: %v", err)
	}
	if mesh.Name != "terrain" {
		t.Errorf("Name = %q, want %q", mesh.Name, "terrain")
	}
	sameFaces(t, mesh, testMesh())
}

func TestSTLBinary_StoredNormal(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteSTLBinary(&buf, testMesh())

	// First facet normal follows the header and count.
	n := getVec(buf.Bytes()[84:])
	if n != math.Up {
		t.Errorf("stored normal = %v, want %v", n, math.Up)
	}
}

func TestReadSTLBinary_Errors(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteSTLBinary(&buf, testMesh())
	full := buf.Bytes()

	huge := append([]byte(nil), full...)
	huge[80], huge[81], huge[82], huge[83] = 0xff, 0xff, 0xff, 0xff

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", full[:40], ErrTruncatedSTLData},
		{"missing facet", full[:len(full)-10], ErrTruncatedSTLData},
		{"absurd count", huge, ErrInvalidSTLCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSTLBinary(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadSTLBinary() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSTLASCII_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSTLASCII(&buf, testMesh()); err != nil {
		t.Fatalf("WriteSTLASCII failed: %v", err)
	}

	text := buf.String()
	if !strings.HasPrefix(text, "solid terrain\n") || !strings.HasSuffix(text, "endsolid terrain\n") {
		t.Errorf("unexpected framing:\n%s", text)
	}
	if got := strings.Count(text, "facet normal"); got != 2 {
		t.Errorf("facet count = %d, want 2", got)
	}

	mesh, err := ReadSTLASCII(&buf)
	if err != nil {
		t.Fatalf("ReadSTLASCII failed: %v", err)
	}
	if mesh.Name != "terrain" {
		t.Errorf("Name = %q, want %q", mesh.Name, "terrain")
	}
	sameFaces(t, mesh, testMesh())
}

func TestReadSTLASCII_Malformed(t *testing.T) {
	tests := []string{
		"solid x\nfacet normal 0 1 0\nouter loop\nvertex 0 0\nendloop\n",
		"solid x\nfacet normal 0 1 0\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\n",
		"solid x\nouter loop\nvertex 0 0 zero\n",
		"solid x\nouter loop\nvertex 0 0 0\n",
	}
	for i, src := range tests {
		if _, err := ReadSTLASCII(strings.NewReader(src)); !errors.Is(err, ErrInvalidSTLASCII) {
			t.Errorf("case %d: error = %v, want ErrInvalidSTLASCII", i, err)
		}
	}
}

func TestSaveLoadSTL(t *testing.T) {
	dir := t.TempDir()

	for _, ascii := range []bool{false, true} {
		path := filepath.Join(dir, "out", "mesh.stl")
		if err := SaveSTL(path, testMesh(), ascii); err != nil {
			t.Fatalf("SaveSTL(ascii=%v) failed: %v", ascii, err)
		}
		mesh, err := LoadSTL(path)
		if err != nil {
			t.Fatalf("LoadSTL(ascii=%v) failed: %v", ascii, err)
		}
		sameFaces(t, mesh, testMesh())
	}
}

func TestLoadSTL_BinaryWithSolidHeader(t *testing.T) {
	// Some exporters start binary headers with "solid"; the size decides.
	m := testMesh()
	m.Name = "x"
	var buf bytes.Buffer
	_ = WriteSTLBinary(&buf, m)
	data := buf.Bytes()
	copy(data, "solid binary")

	if isASCIISTL(data) {
		t.Error("binary file with solid header detected as ASCII")
	}
	if !isASCIISTL([]byte("solid x\nendsolid x\n")) {
		t.Error("ASCII file not detected")
	}
}
