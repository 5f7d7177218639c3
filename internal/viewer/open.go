package viewer

import (
	"errors"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/shiffman/toxiclibs/internal/app"
)

// openKey opens a file dialog for a new elevation source.
const openKey = 'o'

// showOpenDialog asks for a source file without blocking the frame loop. The
// chosen path arrives on v.opened and is loaded by drainOpened.
func (v *Viewer) showOpenDialog() {
	if v.dialogOpen {
		return
	}
	v.dialogOpen = true

	go func() {
		path, err := dialog.File().
			Filter("Terrain sources", "gat", "png", "bmp", "tif", "tiff", "raw", "f32").
			Filter("All Files", "*").
			Title("Open Terrain").
			Load()
		if err != nil {
			if !errors.Is(err, dialog.ErrCancelled) {
				v.log.Warn("file dialog failed", zap.Error(err))
			}
			path = ""
		}
		v.opened <- path
	}()
}

// drainOpened loads a path chosen in the dialog, if one is pending.
func (v *Viewer) drainOpened() {
	select {
	case path := <-v.opened:
		v.dialogOpen = false
		if path == "" {
			return
		}
		if err := v.shell.Dispatch(app.CmdOpen(path)); err != nil {
			v.log.Warn("open failed", zap.String("path", path), zap.Error(err))
		}
	default:
	}
}
