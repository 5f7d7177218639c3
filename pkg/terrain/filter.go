package terrain

import (
	"fmt"

	"github.com/shiffman/toxiclibs/pkg/math"
)

// Smooth applies iterations passes of a Laplacian filter to the elevation.
// Each pass moves every cell towards the mean of its four neighbours by
// amount (0 leaves the terrain unchanged, 1 replaces it with the mean).
// Neighbours beyond the border are clamped to the edge cell.
func (t *Terrain) Smooth(iterations int, amount float32) {
	if iterations <= 0 || amount == 0 {
		return
	}
	next := make([]float32, len(t.elevation))
	at := func(x, z int) float32 {
		x = min(max(x, 0), t.width-1)
		z = min(max(z, 0), t.depth-1)
		return t.elevation[z*t.width+x]
	}

	for ; iterations > 0; iterations-- {
		for z := 0; z < t.depth; z++ {
			for x := 0; x < t.width; x++ {
				h := t.elevation[z*t.width+x]
				mean := (at(x-1, z) + at(x+1, z) + at(x, z-1) + at(x, z+1)) * 0.25
				next[z*t.width+x] = h + (mean-h)*amount
			}
		}
		// next has the right length, so this cannot fail.
		_ = t.SetElevation(next)
	}
}

// Refine returns a new terrain with factor times the grid resolution over the
// same number of cell spans, resampled bilinearly. The result has
// (Width()-1)*factor+1 by (Depth()-1)*factor+1 cells at Scale()/factor.
func (t *Terrain) Refine(factor int) (*Terrain, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: refine factor %d", ErrInvalidDimensions, factor)
	}

	w := (t.width-1)*factor + 1
	d := (t.depth-1)*factor + 1
	out, err := New(w, d, t.scale/float32(factor))
	if err != nil {
		return nil, err
	}

	f := float32(factor)
	values := make([]float32, w*d)
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			values[z*w+x] = t.sample(float32(x)/f, float32(z)/f)
		}
	}
	if err := out.SetElevation(values); err != nil {
		return nil, err
	}
	return out, nil
}

// Normalize remaps the elevation linearly into [lo, hi]. A flat terrain is
// moved to lo.
func (t *Terrain) Normalize(lo, hi float32) {
	curLo, curHi := t.HeightRange()
	span := curHi - curLo

	values := make([]float32, len(t.elevation))
	for i, h := range t.elevation {
		if span == 0 {
			values[i] = lo
			continue
		}
		values[i] = math.Lerp(lo, hi, (h-curLo)/span)
	}
	_ = t.SetElevation(values)
}
