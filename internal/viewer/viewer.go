// Package viewer runs the interactive terrain window: it feeds input to the
// shell, keeps the GPU mesh in sync and draws every frame.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/shiffman/toxiclibs/internal/app"
	"github.com/shiffman/toxiclibs/internal/config"
	"github.com/shiffman/toxiclibs/internal/engine/camera"
	"github.com/shiffman/toxiclibs/internal/engine/input"
	"github.com/shiffman/toxiclibs/internal/engine/renderer"
	"github.com/shiffman/toxiclibs/internal/engine/window"
	"github.com/shiffman/toxiclibs/internal/logger"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

const title = "terrainview"

// Viewer is the main loop around one shell.
type Viewer struct {
	shell    *app.Shell
	log      *zap.Logger
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera

	baseDistance float32
	fitted       *terrain.Terrain
	lastTitle    string
	running      bool

	opened     chan string
	dialogOpen bool
}

// New opens the window and prepares rendering for shell.
func New(cfg *config.Config, shell *app.Shell) (*Viewer, error) {
	v := &Viewer{
		shell:  shell,
		log:    logger.Named("viewer"),
		input:  input.New(),
		camera: camera.NewOrbitCamera(),
		opened: make(chan string, 1),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
		Samples:    cfg.Viewer.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(w, h)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.fitCamera()
	return v, nil
}

// Run loops until the window is closed or Escape is pressed.
func (v *Viewer) Run() error {
	v.running = true
	frames := 0
	fpsTimer := time.Now()

	v.log.Info("starting view loop")
	for v.running {
		if v.input.Update() {
			v.running = false
		}
		for _, ev := range v.input.Events() {
			v.handle(ev)
		}
		v.drainOpened()

		if err := v.frame(); err != nil {
			return err
		}
		v.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frames))
			frames = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handle(ev input.Event) {
	switch ev.Type {
	case input.EventWindowResize:
		v.renderer.Resize(v.window.DrawableSize())
	case input.EventKeyDown:
		if ev.Key == sdl.K_ESCAPE {
			v.running = false
			return
		}
		if ev.Rune == openKey {
			v.showOpenDialog()
			return
		}
		if cmd, ok := app.KeyCommand(ev.Rune); ok {
			if err := v.shell.Dispatch(cmd); err != nil {
				v.log.Warn("command failed", zap.Stringer("command", cmd), zap.Error(err))
			}
		}
	case input.EventMouseMove:
		if ev.Buttons&sdl.ButtonLMask() != 0 {
			v.camera.HandleDrag(float32(ev.DeltaX), float32(ev.DeltaY))
		}
	case input.EventMouseWheel:
		v.baseDistance = max(v.baseDistance*(1-float32(ev.DeltaY)*v.camera.WheelSpeed), v.camera.MinDistance)
	case input.EventMouseDown:
		if ev.Button == sdl.BUTTON_RIGHT {
			v.probe(ev.MouseX, ev.MouseY)
		}
	}
}

func (v *Viewer) frame() error {
	// Refinement keeps the footprint, so only a reset reframes the view.
	if v.shell.Terrain() != v.fitted && v.shell.RefineDepth() == 0 {
		v.fitCamera()
	}
	v.camera.Distance = v.baseDistance / v.shell.Zoom()

	v.renderer.Upload(v.shell.Mesh(), v.shell.Revision())
	v.renderer.Draw(v.camera.ViewProjection(v.renderer.Aspect()), renderer.Options{
		Wireframe:   v.shell.Wireframe(),
		ShowNormals: v.shell.ShowNormals(),
	})

	if path, ok := v.shell.ScreenshotPath(); ok {
		pixels, w, h := v.renderer.ReadPixels()
		if err := writeScreenshot(path, pixels, w, h); err != nil {
			v.log.Warn("screenshot failed", zap.String("path", path), zap.Error(err))
		} else {
			v.log.Info("screenshot saved", zap.String("path", path))
		}
	}

	if t := v.status(); t != v.lastTitle {
		v.window.SetTitle(t)
		v.lastTitle = t
	}
	return nil
}

// fitCamera frames the current terrain after a reset.
func (v *Viewer) fitCamera() {
	v.camera.FitToBounds(v.shell.Terrain().Bounds())
	v.baseDistance = v.camera.Distance
	v.fitted = v.shell.Terrain()
}

func (v *Viewer) probe(mx, my int) {
	ww, wh := v.window.Size()
	if ww == 0 || wh == 0 {
		return
	}
	ray := v.camera.ScreenRay(float32(mx), float32(my), float32(ww), float32(wh))
	hit := Pick(v.shell.Terrain(), ray)
	if !hit.Hit {
		v.log.Info("probe missed terrain", zap.Int("x", mx), zap.Int("y", my))
		return
	}
	v.log.Info("probe",
		zap.Float32("x", hit.Point.X),
		zap.Float32("y", hit.Point.Y),
		zap.Float32("z", hit.Point.Z),
		zap.Float32("normal_x", hit.Normal.X),
		zap.Float32("normal_y", hit.Normal.Y),
		zap.Float32("normal_z", hit.Normal.Z))
}

func (v *Viewer) status() string {
	t := v.shell.Terrain()
	mode := "surface"
	if v.shell.Solid() {
		mode = "solid"
	}
	return fmt.Sprintf("%s - %dx%d %s, %d faces, refine %d, zoom %.1f",
		title, t.Width(), t.Depth(), mode, v.shell.Mesh().FaceCount(), v.shell.RefineDepth(), v.shell.Zoom())
}

// Close releases GPU and window resources.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
