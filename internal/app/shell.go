// Package app holds the interactive terrain shell: the current terrain, its
// mesh and the view state, driven by keyboard commands.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/shiffman/toxiclibs/internal/config"
	"github.com/shiffman/toxiclibs/internal/logger"
	"github.com/shiffman/toxiclibs/pkg/formats"
	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

// Shell errors.
var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrRefineLimit   = errors.New("refine depth limit reached")
	ErrUnknownOp     = errors.New("unknown command")
)

const (
	zoomStep = 0.1
	minZoom  = 0.1

	refineFactor = 2
	smoothAmount = 0.5

	timestampLayout = "20060102-150405"
)

// Shell owns one terrain and the mesh built from it. It is not safe for
// concurrent use; the viewer drives it from the main thread.
type Shell struct {
	cfg *config.Config
	log *zap.Logger
	now func() time.Time

	terrain *terrain.Terrain
	mesh    *geom.Mesh
	preset  int

	refineDepth int
	solid       bool
	wireframe   bool
	normals     bool
	zoom        float32

	revision   uint64
	lastExport string
	screenshot bool
}

// New creates a shell around an already loaded terrain. If t is nil the
// configured source is loaded.
func New(cfg *config.Config, t *terrain.Terrain) (*Shell, error) {
	s := &Shell{
		cfg:    cfg,
		log:    logger.Named("shell"),
		now:    time.Now,
		preset: PresetSource,
		solid:  cfg.Export.Solid,
		zoom:   cfg.Viewer.Zoom,
	}
	if t == nil {
		var err error
		if t, err = buildPreset(PresetSource, cfg.Terrain); err != nil {
			return nil, err
		}
	}
	s.setTerrain(t)
	return s, nil
}

// Dispatch applies one command. Commands that change the terrain or the mesh
// mode rebuild the mesh and bump the revision.
func (s *Shell) Dispatch(cmd Command) error {
	s.log.Debug("dispatch", zap.Stringer("command", cmd))

	switch cmd.Op {
	case OpReset:
		return s.reset(cmd.Preset)
	case OpRefine:
		return s.refine()
	case OpSmooth:
		s.terrain.Smooth(1, smoothAmount)
		s.rebuild()
	case OpToggleSolid:
		s.solid = !s.solid
		s.rebuild()
	case OpExport:
		_, err := s.Export()
		return err
	case OpToggleWireframe:
		s.wireframe = !s.wireframe
	case OpToggleNormals:
		s.normals = !s.normals
	case OpZoomIn:
		s.zoom += zoomStep
	case OpZoomOut:
		s.zoom = max(s.zoom-zoomStep, minZoom)
	case OpScreenshot:
		s.screenshot = true
	case OpOpen:
		return s.open(cmd.Path)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOp, cmd)
	}
	return nil
}

func (s *Shell) reset(n int) error {
	t, err := buildPreset(n, s.cfg.Terrain)
	if err != nil {
		if errors.Is(err, ErrUnknownPreset) {
			err = fmt.Errorf("%w: %d", ErrUnknownPreset, n)
		}
		return err
	}
	s.preset = n
	s.setTerrain(t)
	s.log.Info("reset terrain", zap.Int("preset", n), zap.Int("width", t.Width()), zap.Int("depth", t.Depth()))
	return nil
}

// open loads path and makes it the source preset, so a later reset to
// PresetSource reloads it.
func (s *Shell) open(path string) error {
	cfg := s.cfg.Terrain
	cfg.Source = path
	t, err := buildPreset(PresetSource, cfg)
	if err != nil {
		return err
	}
	s.cfg.Terrain.Source = path
	s.preset = PresetSource
	s.setTerrain(t)
	s.log.Info("opened terrain", zap.String("source", path), zap.Int("width", t.Width()), zap.Int("depth", t.Depth()))
	return nil
}

func (s *Shell) refine() error {
	if s.refineDepth >= s.cfg.Viewer.MaxRefineDepth {
		return fmt.Errorf("%w: %d", ErrRefineLimit, s.cfg.Viewer.MaxRefineDepth)
	}
	t, err := s.terrain.Refine(refineFactor)
	if err != nil {
		return err
	}
	s.terrain = t
	s.refineDepth++
	s.rebuild()
	s.log.Info("refined terrain",
		zap.Int("refine_depth", s.refineDepth),
		zap.Int("width", t.Width()),
		zap.Int("depth", t.Depth()))
	return nil
}

func (s *Shell) setTerrain(t *terrain.Terrain) {
	s.terrain = t
	s.refineDepth = 0
	s.rebuild()
}

func (s *Shell) rebuild() {
	if s.solid {
		s.mesh = s.terrain.ToSolidMesh(s.cfg.Terrain.GroundLevel)
	} else {
		s.mesh = s.terrain.ToMesh()
	}
	s.revision++
}

// Export writes the current mesh as terrain-<timestamp>.stl into the export
// directory and returns the path.
func (s *Shell) Export() (string, error) {
	name := "terrain-" + s.now().Format(timestampLayout) + ".stl"
	path := filepath.Join(s.cfg.Export.Dir, name)
	if err := formats.SaveSTL(path, s.mesh, s.cfg.Export.ASCII); err != nil {
		s.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return "", err
	}
	s.lastExport = path
	s.log.Info("exported mesh",
		zap.String("path", path),
		zap.Int("faces", s.mesh.FaceCount()),
		zap.Bool("solid", s.solid))
	return path, nil
}

// ScreenshotPath returns the file a pending screenshot should be written to
// and clears the request. ok is false when no screenshot was requested.
func (s *Shell) ScreenshotPath() (path string, ok bool) {
	if !s.screenshot {
		return "", false
	}
	s.screenshot = false
	name := "terrain-" + s.now().Format(timestampLayout) + ".png"
	return filepath.Join(s.cfg.Export.Dir, name), true
}

// Terrain returns the current terrain.
func (s *Shell) Terrain() *terrain.Terrain { return s.terrain }

// Mesh returns the mesh for the current revision.
func (s *Shell) Mesh() *geom.Mesh { return s.mesh }

// Revision increments whenever the mesh is rebuilt.
func (s *Shell) Revision() uint64 { return s.revision }

// Preset returns the preset the terrain was last reset to.
func (s *Shell) Preset() int { return s.preset }

// RefineDepth returns the number of refinements since the last reset.
func (s *Shell) RefineDepth() int { return s.refineDepth }

// Solid reports whether the mesh is the closed solid.
func (s *Shell) Solid() bool { return s.solid }

// Wireframe reports whether the mesh is drawn as wireframe.
func (s *Shell) Wireframe() bool { return s.wireframe }

// ShowNormals reports whether vertex normals are drawn.
func (s *Shell) ShowNormals() bool { return s.normals }

// Zoom returns the view zoom factor.
func (s *Shell) Zoom() float32 { return s.zoom }

// LastExport returns the path of the most recent STL export.
func (s *Shell) LastExport() string { return s.lastExport }
