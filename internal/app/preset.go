package app

import (
	gomath "math"

	"github.com/shiffman/toxiclibs/internal/config"
	"github.com/shiffman/toxiclibs/internal/source"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

// Preset numbers accepted by CmdReset.
const (
	PresetFlat = iota + 1
	PresetRidge
	PresetCone
	PresetPyramid
	PresetSource
)

// shapeFunc returns a height factor in [0, 1] for normalised grid
// coordinates u, v in [-1, 1].
type shapeFunc func(u, v float64) float64

var shapes = map[int]shapeFunc{
	PresetFlat: func(u, v float64) float64 { return 0 },
	PresetRidge: func(u, v float64) float64 {
		return 1 - gomath.Abs(u)
	},
	PresetCone: func(u, v float64) float64 {
		return gomath.Max(0, 1-gomath.Hypot(u, v))
	},
	PresetPyramid: func(u, v float64) float64 {
		return 1 - gomath.Max(gomath.Abs(u), gomath.Abs(v))
	},
}

// buildPreset creates the terrain for preset n from the configured grid.
func buildPreset(n int, cfg config.TerrainConfig) (*terrain.Terrain, error) {
	if n == PresetSource {
		return source.Load(cfg)
	}
	shape, ok := shapes[n]
	if !ok {
		return nil, ErrUnknownPreset
	}

	t, err := terrain.New(cfg.Width, cfg.Depth, cfg.Scale)
	if err != nil {
		return nil, err
	}
	values := make([]float32, cfg.Width*cfg.Depth)
	for z := 0; z < cfg.Depth; z++ {
		for x := 0; x < cfg.Width; x++ {
			u := normalised(x, cfg.Width)
			v := normalised(z, cfg.Depth)
			values[z*cfg.Width+x] = float32(shape(u, v)) * cfg.HeightScale
		}
	}
	if err := t.SetElevation(values); err != nil {
		return nil, err
	}
	return t, nil
}

// normalised maps cell i of n onto [-1, 1].
func normalised(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return 2*float64(i)/float64(n-1) - 1
}
