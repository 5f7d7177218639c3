// Package config handles viewer and tool configuration loading.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Terrain TerrainConfig `yaml:"terrain"`
	Export  ExportConfig  `yaml:"export"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// TerrainConfig describes the grid the shell starts with.
type TerrainConfig struct {
	Width       int     `yaml:"width"`
	Depth       int     `yaml:"depth"`
	Scale       float32 `yaml:"scale"`
	Source      string  `yaml:"source"`       // .gat, image, .raw/.f32, archive.grf#member, or empty for flat
	HeightScale float32 `yaml:"height_scale"` // image heightmaps only
	GroundLevel float32 `yaml:"ground_level"` // floor of the solid mesh
}

// ExportConfig controls STL output.
type ExportConfig struct {
	Dir   string `yaml:"dir"`
	ASCII bool   `yaml:"ascii"`
	Solid bool   `yaml:"solid"`
}

// ViewerConfig holds window and view settings.
type ViewerConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Fullscreen     bool    `yaml:"fullscreen"`
	VSync          bool    `yaml:"vsync"`
	Samples        int     `yaml:"samples"` // MSAA samples, 0 to disable
	Zoom           float32 `yaml:"zoom"`
	MaxRefineDepth int     `yaml:"max_refine_depth"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Width:       64,
			Depth:       64,
			Scale:       4,
			HeightScale: 32,
			GroundLevel: -10,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Viewer: ViewerConfig{
			Width:          1280,
			Height:         720,
			VSync:          true,
			Samples:        4,
			Zoom:           1,
			MaxRefineDepth: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Terrain.Width <= 0 || c.Terrain.Depth <= 0:
		return fmt.Errorf("%w: terrain size %dx%d", ErrInvalidConfig, c.Terrain.Width, c.Terrain.Depth)
	case c.Terrain.Scale <= 0:
		return fmt.Errorf("%w: terrain scale %v", ErrInvalidConfig, c.Terrain.Scale)
	case c.Viewer.Width <= 0 || c.Viewer.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Viewer.Width, c.Viewer.Height)
	case c.Viewer.Samples < 0:
		return fmt.Errorf("%w: samples %d", ErrInvalidConfig, c.Viewer.Samples)
	case c.Viewer.Zoom <= 0:
		return fmt.Errorf("%w: zoom %v", ErrInvalidConfig, c.Viewer.Zoom)
	case c.Viewer.MaxRefineDepth < 0:
		return fmt.Errorf("%w: max refine depth %d", ErrInvalidConfig, c.Viewer.MaxRefineDepth)
	}
	return nil
}
