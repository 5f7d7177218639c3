package app

import "fmt"

// Op identifies a shell operation.
type Op int

const (
	OpReset Op = iota
	OpRefine
	OpSmooth
	OpToggleSolid
	OpExport
	OpToggleWireframe
	OpToggleNormals
	OpZoomIn
	OpZoomOut
	OpScreenshot
	OpOpen
)

var opNames = [...]string{
	OpReset:           "reset",
	OpRefine:          "refine",
	OpSmooth:          "smooth",
	OpToggleSolid:     "toggle_solid",
	OpExport:          "export",
	OpToggleWireframe: "toggle_wireframe",
	OpToggleNormals:   "toggle_normals",
	OpZoomIn:          "zoom_in",
	OpZoomOut:         "zoom_out",
	OpScreenshot:      "screenshot",
	OpOpen:            "open",
}

func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Command is one request to the shell. Preset is only used by OpReset and
// Path only by OpOpen.
type Command struct {
	Op     Op
	Preset int
	Path   string
}

func (c Command) String() string {
	switch c.Op {
	case OpReset:
		return fmt.Sprintf("reset(%d)", c.Preset)
	case OpOpen:
		return fmt.Sprintf("open(%s)", c.Path)
	}
	return c.Op.String()
}

// CmdReset selects preset n (1-5).
func CmdReset(n int) Command {
	return Command{Op: OpReset, Preset: n}
}

// CmdOpen loads path as the new elevation source.
func CmdOpen(path string) Command {
	return Command{Op: OpOpen, Path: path}
}

// Commands without arguments.
var (
	CmdRefine          = Command{Op: OpRefine}
	CmdSmooth          = Command{Op: OpSmooth}
	CmdToggleSolid     = Command{Op: OpToggleSolid}
	CmdExport          = Command{Op: OpExport}
	CmdToggleWireframe = Command{Op: OpToggleWireframe}
	CmdToggleNormals   = Command{Op: OpToggleNormals}
	CmdZoomIn          = Command{Op: OpZoomIn}
	CmdZoomOut         = Command{Op: OpZoomOut}
	CmdScreenshot      = Command{Op: OpScreenshot}
)

// KeyCommand maps a typed character to its command.
//
//	1-5  reset to preset
//	s    refine
//	l    smooth
//	b    toggle solid
//	x    export STL
//	w    toggle wireframe
//	n    toggle normals
//	- =  zoom out / in
//	     (space) screenshot
func KeyCommand(r rune) (Command, bool) {
	switch r {
	case '1', '2', '3', '4', '5':
		return CmdReset(int(r - '0')), true
	case 's':
		return CmdRefine, true
	case 'l':
		return CmdSmooth, true
	case 'b':
		return CmdToggleSolid, true
	case 'x':
		return CmdExport, true
	case 'w':
		return CmdToggleWireframe, true
	case 'n':
		return CmdToggleNormals, true
	case '-':
		return CmdZoomOut, true
	case '=':
		return CmdZoomIn, true
	case ' ':
		return CmdScreenshot, true
	}
	return Command{}, false
}
