// Package terrain implements a grid based heightfield in the XZ plane with
// the positive Y axis as up vector. A terrain supports exact and interpolated
// height lookups, vertical ray intersection and conversion to triangle meshes.
//
// A Terrain is not safe for concurrent use; callers must serialize mutation
// against readers.
package terrain

import (
	"errors"
	"fmt"

	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

// Terrain errors.
var (
	ErrOutOfBounds       = errors.New("terrain cell out of bounds")
	ErrSizeMismatch      = errors.New("elevation size does not match terrain")
	ErrInvalidDimensions = errors.New("invalid terrain dimensions")
)

// rayHeight is the Y origin of the vertical probe ray used by IntersectAtPoint.
const rayHeight = 10000

// Terrain is a width x depth grid of elevation samples centred on the world
// origin. Cell (x, z) lives at index z*width + x.
type Terrain struct {
	width int
	depth int
	scale float32

	// elevation[i] == vertices[i].Y at all times.
	elevation []float32
	vertices  []math.Vec3
}

// New creates an initially flat terrain of the given size. scale is the
// world size of one grid cell.
func New(width, depth int, scale float32) (*Terrain, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, depth)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: scale %v", ErrInvalidDimensions, scale)
	}

	t := &Terrain{
		width:     width,
		depth:     depth,
		scale:     scale,
		elevation: make([]float32, width*depth),
		vertices:  make([]math.Vec3, width*depth),
	}
	for z, i := 0, 0; z < depth; z++ {
		for x := 0; x < width; x++ {
			t.vertices[i] = math.Vec3{X: t.worldX(x), Z: t.worldZ(z)}
			i++
		}
	}
	return t, nil
}

// Width returns the number of grid cells along the X axis.
func (t *Terrain) Width() int { return t.width }

// Depth returns the number of grid cells along the Z axis.
func (t *Terrain) Depth() int { return t.depth }

// Scale returns the world size of a grid cell.
func (t *Terrain) Scale() float32 { return t.scale }

// Elevation returns a copy of all heights in row-major order.
func (t *Terrain) Elevation() []float32 {
	out := make([]float32, len(t.elevation))
	copy(out, t.elevation)
	return out
}

// worldX maps a cell column to its world X coordinate. Every position the
// terrain emits on the grid goes through worldX/worldZ so that shared mesh
// vertices compare bit-for-bit equal.
func (t *Terrain) worldX(x int) float32 {
	return (float32(x) - float32(t.width)*0.5) * t.scale
}

func (t *Terrain) worldZ(z int) float32 {
	return (float32(z) - float32(t.depth)*0.5) * t.scale
}

// gridCoords maps world coordinates to fractional cell coordinates.
func (t *Terrain) gridCoords(x, z float32) (float32, float32) {
	return x/t.scale + float32(t.width)*0.5, z/t.scale + float32(t.depth)*0.5
}

func (t *Terrain) inGrid(xx, zz float32) bool {
	return xx >= 0 && xx < float32(t.width) && zz >= 0 && zz < float32(t.depth)
}

// index returns the array index of cell (x, z).
func (t *Terrain) index(x, z int) (int, error) {
	if x < 0 || x >= t.width || z < 0 || z >= t.depth {
		return 0, fmt.Errorf("%w: %d;%d", ErrOutOfBounds, x, z)
	}
	return z*t.width + x, nil
}

// HeightAtCell returns the elevation stored at grid cell (x, z).
func (t *Terrain) HeightAtCell(x, z int) (float32, error) {
	i, err := t.index(x, z)
	if err != nil {
		return 0, err
	}
	return t.elevation[i], nil
}

// VertexAtCell returns the world position of grid cell (x, z).
func (t *Terrain) VertexAtCell(x, z int) (math.Vec3, error) {
	i, err := t.index(x, z)
	if err != nil {
		return math.Vec3{}, err
	}
	return t.vertices[i], nil
}

// cellCorners returns the lower cell of a fractional grid position and its
// clamped upper neighbour.
func (t *Terrain) cellCorners(xx, zz float32) (x0, z0, x2, z2 int) {
	x0, z0 = int(xx), int(zz)
	x2 = min(x0+1, t.width-1)
	z2 = min(z0+1, t.depth-1)
	return x0, z0, x2, z2
}

// sample interpolates the elevation at in-range fractional grid coordinates.
func (t *Terrain) sample(xx, zz float32) float32 {
	x0, z0, x2, z2 := t.cellCorners(xx, zz)
	fx := xx - float32(x0)
	fz := zz - float32(z0)

	a := t.elevation[z0*t.width+x0]
	b := t.elevation[z0*t.width+x2]
	c := t.elevation[z2*t.width+x0]
	d := t.elevation[z2*t.width+x2]
	return math.Lerp(math.Lerp(a, b, fx), math.Lerp(c, d, fx), fz)
}

// HeightAtPoint returns the bilinearly interpolated elevation at world
// coordinates (x, z). Points outside the grid return 0.
func (t *Terrain) HeightAtPoint(x, z float32) float32 {
	xx, zz := t.gridCoords(x, z)
	if !t.inGrid(xx, zz) {
		return 0
	}
	return t.sample(xx, zz)
}

// IntersectAtPoint casts a vertical ray down onto the terrain at world
// coordinates (x, z) and returns the surface point and normal. The zero
// Intersection is returned for points outside the grid or when the ray
// misses the enclosing quad, which happens on the last row and column where
// the quad collapses.
func (t *Terrain) IntersectAtPoint(x, z float32) geom.Intersection {
	xx, zz := t.gridCoords(x, z)
	if !t.inGrid(xx, zz) {
		return geom.Intersection{}
	}

	x0, z0, x2, z2 := t.cellCorners(xx, zz)
	a := t.vertices[z0*t.width+x0]
	b := t.vertices[z0*t.width+x2]
	c := t.vertices[z2*t.width+x2]
	d := t.vertices[z2*t.width+x0]

	ray := geom.Ray{
		Origin: math.Vec3{X: x, Y: rayHeight, Z: z},
		Dir:    math.Vec3{Y: -1},
	}
	// Same diagonal (b-d) as the faces produced by ToMesh.
	if isec, ok := ray.IntersectTriangle(geom.NewTriangle(a, d, b)); ok {
		return isec
	}
	isec, _ := ray.IntersectTriangle(geom.NewTriangle(b, d, c))
	return isec
}

// SetElevation replaces the height of every cell. values must hold exactly
// Width()*Depth() entries in row-major order; otherwise the terrain is left
// untouched.
func (t *Terrain) SetElevation(values []float32) error {
	if len(values) != len(t.elevation) {
		return fmt.Errorf("%w: got %d values, want %d", ErrSizeMismatch, len(values), len(t.elevation))
	}
	for i, h := range values {
		t.elevation[i] = h
		t.vertices[i].Y = h
	}
	return nil
}

// SetHeightAtCell sets the elevation of a single grid cell.
func (t *Terrain) SetHeightAtCell(x, z int, h float32) error {
	i, err := t.index(x, z)
	if err != nil {
		return err
	}
	t.elevation[i] = h
	t.vertices[i].Y = h
	return nil
}

// HeightRange returns the lowest and highest elevation.
func (t *Terrain) HeightRange() (lo, hi float32) {
	lo, hi = t.elevation[0], t.elevation[0]
	for _, h := range t.elevation[1:] {
		lo = min(lo, h)
		hi = max(hi, h)
	}
	return lo, hi
}

// Bounds returns the world-space box spanned by the grid vertices.
func (t *Terrain) Bounds() geom.AABB {
	lo, hi := t.HeightRange()
	return geom.AABB{
		Min: math.Vec3{X: t.worldX(0), Y: lo, Z: t.worldZ(0)},
		Max: math.Vec3{X: t.worldX(t.width - 1), Y: hi, Z: t.worldZ(t.depth - 1)},
	}
}
