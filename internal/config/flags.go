package config

import "flag"

// Flags holds command-line overrides. Zero values leave the loaded settings
// alone.
type Flags struct {
	ConfigPath string
	Debug      bool
	Source     string
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	Zoom       float64
	ExportDir  string
	LogFile    string
}

// RegisterFlags binds the viewer flags on fs. Parse fs before passing the
// result to Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Source, "source", "", "Terrain source (.gat, .png, .bmp, .tiff, .raw, archive.grf#member)")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.Float64Var(&f.Zoom, "zoom", 0, "Initial zoom factor")
	fs.StringVar(&f.ExportDir, "export-dir", "", "Directory for STL exports and screenshots")
	fs.StringVar(&f.LogFile, "log-file", "", "Also log to this file, with rotation")
	return f
}

func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Source != "" {
		cfg.Terrain.Source = f.Source
	}
	// -fullscreen wins when both are given.
	if f.Windowed {
		cfg.Viewer.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Viewer.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Viewer.Height = f.Height
	}
	if f.Zoom > 0 {
		cfg.Viewer.Zoom = float32(f.Zoom)
	}
	if f.ExportDir != "" {
		cfg.Export.Dir = f.ExportDir
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
