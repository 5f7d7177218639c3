package terrain

import (
	"errors"
	"testing"

	"github.com/shiffman/toxiclibs/pkg/math"
)

func mustNew(t *testing.T, width, depth int, scale float32) *Terrain {
	t.Helper()
	tr, err := New(width, depth, scale)
	if err != nil {
		t.Fatalf("New(%d, %d, %v) failed: %v", width, depth, scale, err)
	}
	return tr
}

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name         string
		width, depth int
		scale        float32
	}{
		{"zero width", 0, 4, 1},
		{"negative depth", 4, -1, 1},
		{"zero scale", 4, 4, 0},
		{"negative scale", 4, 4, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.depth, tt.scale)
			if !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("New() error = %v, want ErrInvalidDimensions", err)
			}
		})
	}
}

func TestNew_FlatAndCentred(t *testing.T) {
	tr := mustNew(t, 3, 3, 1)

	if tr.Width() != 3 || tr.Depth() != 3 || tr.Scale() != 1 {
		t.Errorf("dimensions = %dx%d@%v, want 3x3@1", tr.Width(), tr.Depth(), tr.Scale())
	}
	for _, h := range tr.Elevation() {
		if h != 0 {
			t.Fatalf("new terrain elevation = %v, want 0", h)
		}
	}

	tests := []struct {
		x, z int
		want math.Vec3
	}{
		{0, 0, math.Vec3{X: -1.5, Z: -1.5}},
		{2, 0, math.Vec3{X: 0.5, Z: -1.5}},
		{1, 2, math.Vec3{X: -0.5, Z: 0.5}},
	}
	for _, tt := range tests {
		got, err := tr.VertexAtCell(tt.x, tt.z)
		if err != nil {
			t.Fatalf("VertexAtCell(%d, %d) failed: %v", tt.x, tt.z, err)
		}
		if got != tt.want {
			t.Errorf("VertexAtCell(%d, %d) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}

func TestSetHeightAtCell(t *testing.T) {
	tr := mustNew(t, 5, 4, 2)

	for z := 0; z < tr.Depth(); z++ {
		for x := 0; x < tr.Width(); x++ {
			h := float32(x*10 + z)
			if err := tr.SetHeightAtCell(x, z, h); err != nil {
				t.Fatalf("SetHeightAtCell(%d, %d) failed: %v", x, z, err)
			}
		}
	}

	for z := 0; z < tr.Depth(); z++ {
		for x := 0; x < tr.Width(); x++ {
			want := float32(x*10 + z)
			got, err := tr.HeightAtCell(x, z)
			if err != nil || got != want {
				t.Errorf("HeightAtCell(%d, %d) = %v, %v, want %v", x, z, got, err, want)
			}
			v, _ := tr.VertexAtCell(x, z)
			if v.Y != want {
				t.Errorf("vertex(%d, %d).Y = %v, want %v", x, z, v.Y, want)
			}
		}
	}
}

func TestCellOutOfBounds(t *testing.T) {
	tr := mustNew(t, 3, 3, 1)

	// (-1, 1) would wrap to a valid row-major index; it must still fail.
	cells := [][2]int{{-1, 1}, {3, 0}, {0, 3}, {0, -1}, {3, 2}}
	for _, c := range cells {
		if _, err := tr.HeightAtCell(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("HeightAtCell(%d, %d) error = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
		if err := tr.SetHeightAtCell(c[0], c[1], 1); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetHeightAtCell(%d, %d) error = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
		if _, err := tr.VertexAtCell(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("VertexAtCell(%d, %d) error = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
	}

	for _, h := range tr.Elevation() {
		if h != 0 {
			t.Fatal("failed SetHeightAtCell modified the terrain")
		}
	}
}

func TestSetElevation(t *testing.T) {
	tr := mustNew(t, 3, 2, 1)
	values := []float32{1, 2, 3, 4, 5, 6}

	if err := tr.SetElevation(values); err != nil {
		t.Fatalf("SetElevation failed: %v", err)
	}
	for z := 0; z < 2; z++ {
		for x := 0; x < 3; x++ {
			want := values[z*3+x]
			if got, _ := tr.HeightAtCell(x, z); got != want {
				t.Errorf("HeightAtCell(%d, %d) = %v, want %v", x, z, got, want)
			}
			if v, _ := tr.VertexAtCell(x, z); v.Y != want {
				t.Errorf("vertex(%d, %d).Y = %v, want %v", x, z, v.Y, want)
			}
		}
	}

	// Mutating the input afterwards must not leak into the terrain.
	values[0] = 100
	if got, _ := tr.HeightAtCell(0, 0); got != 1 {
		t.Errorf("HeightAtCell(0, 0) = %v after caller mutation, want 1", got)
	}
}

func TestSetElevation_SizeMismatch(t *testing.T) {
	tr := mustNew(t, 3, 2, 1)
	_ = tr.SetElevation([]float32{1, 2, 3, 4, 5, 6})

	for _, n := range []int{0, 5, 7} {
		err := tr.SetElevation(make([]float32, n))
		if !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("SetElevation(len %d) error = %v, want ErrSizeMismatch", n, err)
		}
	}

	want := []float32{1, 2, 3, 4, 5, 6}
	for i, h := range tr.Elevation() {
		if h != want[i] {
			t.Errorf("elevation[%d] = %v after rejected update, want %v", i, h, want[i])
		}
	}
}

func TestHeightAtPoint_ExactAtVertices(t *testing.T) {
	tr := mustNew(t, 4, 3, 2)
	for i := range 12 {
		_ = tr.SetHeightAtCell(i%4, i/4, float32(i*i)-3)
	}

	for z := 0; z < tr.Depth(); z++ {
		for x := 0; x < tr.Width(); x++ {
			v, _ := tr.VertexAtCell(x, z)
			if got := tr.HeightAtPoint(v.X, v.Z); got != v.Y {
				t.Errorf("HeightAtPoint at cell (%d, %d) = %v, want %v", x, z, got, v.Y)
			}
		}
	}
}

func TestHeightAtPoint_Bilinear(t *testing.T) {
	tr := mustNew(t, 2, 2, 1)
	_ = tr.SetElevation([]float32{0, 4, 8, 12})

	tests := []struct {
		name string
		x, z float32
		want float32
	}{
		{"quad centre", -0.5, -0.5, 6},
		{"quarter", -0.75, -1, 1},
		{"last column degenerates to linear", 0.5, -0.5, 8},
		{"last corner is a point sample", 0.5, 0.5, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.HeightAtPoint(tt.x, tt.z); got != tt.want {
				t.Errorf("HeightAtPoint(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
			}
		})
	}
}

func TestHeightAtPoint_Outside(t *testing.T) {
	tr := mustNew(t, 4, 4, 1)
	_ = tr.SetElevation([]float32{
		7, 7, 7, 7,
		7, 7, 7, 7,
		7, 7, 7, 7,
		7, 7, 7, 7,
	})

	points := [][2]float32{{-2.01, 0}, {0, -2.01}, {2, 0}, {0, 2}, {100, 100}, {-100, 0}}
	for _, p := range points {
		if got := tr.HeightAtPoint(p[0], p[1]); got != 0 {
			t.Errorf("HeightAtPoint(%v, %v) = %v, want 0", p[0], p[1], got)
		}
	}
	if got := tr.HeightAtPoint(-2, -2); got != 7 {
		t.Errorf("HeightAtPoint(-2, -2) = %v, want 7", got)
	}
}

func TestHeightAtPoint_Peak(t *testing.T) {
	tr := mustNew(t, 3, 3, 1)
	_ = tr.SetHeightAtCell(1, 1, 5)

	got := tr.HeightAtPoint(0, 0)
	if got != 1.25 {
		t.Errorf("HeightAtPoint(0, 0) = %v, want 1.25", got)
	}

	corner, _ := tr.VertexAtCell(0, 0)
	if got := tr.HeightAtPoint(corner.X, corner.Z); got != 0 {
		t.Errorf("HeightAtPoint at cell (0, 0) = %v, want 0", got)
	}
	if got := tr.HeightAtPoint(-0.5, -0.5); got != 5 {
		t.Errorf("HeightAtPoint at cell (1, 1) = %v, want 5", got)
	}
}

func TestIntersectAtPoint_Plane(t *testing.T) {
	// A tilted plane is reproduced exactly by both triangles of every quad.
	tr := mustNew(t, 4, 4, 1)
	for z := 0; z < 4; z++ {
		for x := 0; x < 4; x++ {
			_ = tr.SetHeightAtCell(x, z, float32(x)+2*float32(z))
		}
	}
	wantNormal := math.Vec3{X: -1, Y: 1, Z: -2}.Normalize()

	points := [][2]float32{{-1.75, -1.75}, {-1.25, -1.6}, {-0.3, 0.2}, {0.9, -0.1}}
	for _, p := range points {
		isec := tr.IntersectAtPoint(p[0], p[1])
		if !isec.Hit {
			t.Fatalf("IntersectAtPoint(%v, %v) missed", p[0], p[1])
		}
		want := tr.HeightAtPoint(p[0], p[1])
		if d := isec.Point.Y - want; d > 0.02 || d < -0.02 {
			t.Errorf("IntersectAtPoint(%v, %v).Point.Y = %v, want %v", p[0], p[1], isec.Point.Y, want)
		}
		if isec.Point.X != p[0] || isec.Point.Z != p[1] {
			t.Errorf("IntersectAtPoint(%v, %v).Point = %v", p[0], p[1], isec.Point)
		}
		if !isec.Normal.ApproxEqual(wantNormal, 1e-5) {
			t.Errorf("IntersectAtPoint(%v, %v).Normal = %v, want %v", p[0], p[1], isec.Normal, wantNormal)
		}
		if isec.Dir != (math.Vec3{Y: -1}) {
			t.Errorf("ray direction = %v, want (0, -1, 0)", isec.Dir)
		}
		if d := isec.Distance - (rayHeight - want); d > 0.02 || d < -0.02 {
			t.Errorf("Distance = %v, want %v", isec.Distance, rayHeight-want)
		}
	}
}

func TestIntersectAtPoint_SecondTriangle(t *testing.T) {
	tr := mustNew(t, 3, 3, 1)
	_ = tr.SetHeightAtCell(1, 1, 5)

	// (-0.75, -0.75) lies past the diagonal of the first quad, in the
	// triangle that touches the peak.
	isec := tr.IntersectAtPoint(-0.75, -0.75)
	if !isec.Hit {
		t.Fatal("IntersectAtPoint(-0.75, -0.75) missed")
	}
	if d := isec.Point.Y - 2.5; d > 0.02 || d < -0.02 {
		t.Errorf("Point.Y = %v, want 2.5", isec.Point.Y)
	}
	if isec.Normal.Y <= 0 || isec.Normal.X >= 0 || isec.Normal.Z >= 0 {
		t.Errorf("Normal = %v, want up and away from the peak", isec.Normal)
	}
}

func TestIntersectAtPoint_NoHit(t *testing.T) {
	tr := mustNew(t, 3, 3, 1)

	if isec := tr.IntersectAtPoint(10, 0); isec.Hit {
		t.Errorf("IntersectAtPoint outside grid = %+v, want no hit", isec)
	}
	// The last column has no quad to hit.
	if isec := tr.IntersectAtPoint(0.75, 0); isec.Hit {
		t.Errorf("IntersectAtPoint on last column = %+v, want no hit", isec)
	}
}

func TestBoundsAndHeightRange(t *testing.T) {
	tr := mustNew(t, 3, 2, 2)
	_ = tr.SetElevation([]float32{-1, 0, 4, 2, 3, 1})

	lo, hi := tr.HeightRange()
	if lo != -1 || hi != 4 {
		t.Errorf("HeightRange() = %v, %v, want -1, 4", lo, hi)
	}

	b := tr.Bounds()
	wantMin := math.Vec3{X: -3, Y: -1, Z: -2}
	wantMax := math.Vec3{X: 1, Y: 4, Z: 0}
	if b.Min != wantMin || b.Max != wantMax {
		t.Errorf("Bounds() = %v..%v, want %v..%v", b.Min, b.Max, wantMin, wantMax)
	}
}
