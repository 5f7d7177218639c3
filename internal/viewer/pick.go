package viewer

import (
	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

const bisectSteps = 24

// Pick finds where ray first meets the terrain surface. It marches through
// the terrain's bounding box in quarter-cell steps, bisects the first
// crossing, and resolves the exact hit with a vertical probe at that spot.
func Pick(t *terrain.Terrain, ray geom.Ray) geom.Intersection {
	box := t.Bounds()
	// Give flat terrains some thickness for the slab test.
	box.Min.Y -= t.Scale()
	box.Max.Y += t.Scale()

	start, ok := ray.IntersectAABB(box)
	if !ok {
		return geom.Intersection{}
	}
	if box.Contains(ray.Origin) {
		start = 0
	}

	above := func(d float32) bool {
		p := ray.At(d)
		return p.Y >= t.HeightAtPoint(p.X, p.Z)
	}

	step := t.Scale() * 0.25
	end := start + box.Size().Length()
	prev := start
	for d := start; d <= end; d += step {
		if above(d) {
			prev = d
			continue
		}
		lo, hi := prev, d
		for range bisectSteps {
			mid := (lo + hi) * 0.5
			if above(mid) {
				lo = mid
			} else {
				hi = mid
			}
		}
		p := ray.At(hi)
		hit := t.IntersectAtPoint(p.X, p.Z)
		if hit.Hit {
			hit.Dir = ray.Dir
			hit.Distance = ray.Origin.Distance(hit.Point)
			return hit
		}
		prev = d
	}
	return geom.Intersection{}
}
