// terraintool is a CLI utility for inspecting and converting heightfield
// terrains.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shiffman/toxiclibs/internal/config"
	"github.com/shiffman/toxiclibs/internal/logger"
	"github.com/shiffman/toxiclibs/internal/source"
	"github.com/shiffman/toxiclibs/pkg/formats"
	"github.com/shiffman/toxiclibs/pkg/grf"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	defer logger.Sync()

	switch command {
	case "info":
		return cmdInfo(args, out)
	case "export":
		return cmdExport(args, out)
	case "sample":
		return cmdSample(args, out)
	case "check":
		return cmdCheck(args, out)
	case "convert":
		return cmdConvert(args, out)
	case "list":
		return cmdList(args, out)
	case "pack":
		return cmdPack(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(os.Stderr)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `terraintool - heightfield terrain utility

Usage:
  terraintool <command> [options]

Commands:
  info <src>                         Show grid size, height range and face counts
  export [options] <src>             Write the terrain mesh as STL
  sample <src> <x> <z>               Sample height and surface normal at a world point
  check <file.stl>                   Report face count, closedness and volume
  convert <src> <out>                Convert to .gat, .png or .raw/.f32
  list <archive.grf>                 List the files stored in a GRF archive
  pack [-dir d] <archive.grf> <file>...
                                     Store files in a new GRF archive

Sources are .gat, .png, .bmp, .tif/.tiff or .raw/.f32 files, members of a
GRF archive written as archive.grf#path, or "flat".
Every command accepts -width, -depth, -scale and -height-scale.

Examples:
  terraintool info maps/prontera.gat
  terraintool info data.grf#data/prontera.gat
  terraintool export -solid -ground -20 -o prontera.stl maps/prontera.gat
  terraintool sample -scale 2 height.png 10.5 -3
  terraintool check prontera.stl
  terraintool convert -width 256 -depth 256 grid.raw grid.png`)
}

// sourceFlags holds the grid options shared by every source command.
type sourceFlags struct {
	cfg         config.TerrainConfig
	scale       float64
	heightScale float64
	verbose     bool
}

func newSourceFlags(fs *flag.FlagSet) *sourceFlags {
	sf := &sourceFlags{cfg: config.Default().Terrain}
	fs.IntVar(&sf.cfg.Width, "width", sf.cfg.Width, "Grid width for flat and raw sources")
	fs.IntVar(&sf.cfg.Depth, "depth", sf.cfg.Depth, "Grid depth for flat and raw sources")
	fs.Float64Var(&sf.scale, "scale", float64(sf.cfg.Scale), "World units per cell")
	fs.Float64Var(&sf.heightScale, "height-scale", float64(sf.cfg.HeightScale), "Height of a white pixel in image sources")
	fs.BoolVar(&sf.verbose, "v", false, "Enable debug logging")
	return sf
}

func (sf *sourceFlags) load(src string) (*terrain.Terrain, error) {
	if sf.verbose {
		if err := logger.Init("debug", ""); err != nil {
			return nil, err
		}
	}
	cfg := sf.cfg
	cfg.Scale = float32(sf.scale)
	cfg.HeightScale = float32(sf.heightScale)
	if src != "flat" {
		cfg.Source = src
	}
	return source.Load(cfg)
}

func parse(fs *flag.FlagSet, args []string, nargs int, usage string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	if fs.NArg() != nargs {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}
	return nil
}

func cmdInfo(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	sf := newSourceFlags(fs)
	if err := parse(fs, args, 1, "terraintool info [options] <src>"); err != nil {
		return err
	}

	t, err := sf.load(fs.Arg(0))
	if err != nil {
		return err
	}

	lo, hi := t.HeightRange()
	size := t.Bounds().Size()
	fmt.Fprintf(out, "Source:    %s\n", fs.Arg(0))
	fmt.Fprintf(out, "Grid:      %d x %d cells\n", t.Width(), t.Depth())
	fmt.Fprintf(out, "Scale:     %g\n", t.Scale())
	fmt.Fprintf(out, "Footprint: %g x %g\n", size.X, size.Z)
	fmt.Fprintf(out, "Heights:   %g .. %g\n", lo, hi)
	fmt.Fprintf(out, "Surface:   %d triangles\n", t.SurfaceFaceCount())
	fmt.Fprintf(out, "Solid:     %d triangles\n", t.SolidFaceCount())
	return nil
}

func cmdExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	sf := newSourceFlags(fs)
	solid := fs.Bool("solid", false, "Export the closed solid instead of the surface")
	ground := fs.Float64("ground", float64(sf.cfg.GroundLevel), "Ground level of the solid")
	ascii := fs.Bool("ascii", false, "Write ASCII STL")
	output := fs.String("o", "", "Output file (default: <src>.stl)")
	if err := parse(fs, args, 1, "terraintool export [-solid] [-ground g] [-ascii] [-o out.stl] <src>"); err != nil {
		return err
	}

	src := fs.Arg(0)
	t, err := sf.load(src)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".stl"
	}

	mesh := t.ToMesh()
	if *solid {
		mesh = t.ToSolidMesh(float32(*ground))
	}
	if err := formats.SaveSTL(path, mesh, *ascii); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d triangles to %s\n", mesh.FaceCount(), path)
	return nil
}

func cmdSample(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	sf := newSourceFlags(fs)
	usage := "terraintool sample [options] <src> <x> <z>"
	if err := parse(fs, args, 3, usage); err != nil {
		return err
	}

	x, errX := strconv.ParseFloat(fs.Arg(1), 32)
	z, errZ := strconv.ParseFloat(fs.Arg(2), 32)
	if errX != nil || errZ != nil {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}

	t, err := sf.load(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Height: %g\n", t.HeightAtPoint(float32(x), float32(z)))
	hit := t.IntersectAtPoint(float32(x), float32(z))
	if !hit.Hit {
		fmt.Fprintln(out, "Surface: no hit")
		return nil
	}
	fmt.Fprintf(out, "Surface: (%g, %g, %g)\n", hit.Point.X, hit.Point.Y, hit.Point.Z)
	fmt.Fprintf(out, "Normal:  (%.4f, %.4f, %.4f)\n", hit.Normal.X, hit.Normal.Y, hit.Normal.Z)
	return nil
}

func cmdCheck(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	if err := parse(fs, args, 1, "terraintool check <file.stl>"); err != nil {
		return err
	}

	mesh, err := formats.LoadSTL(fs.Arg(0))
	if err != nil {
		return err
	}

	open := 0
	for _, n := range mesh.Edges() {
		if n != 2 {
			open++
		}
	}
	b := mesh.Bounds()

	fmt.Fprintf(out, "Name:      %s\n", mesh.Name)
	fmt.Fprintf(out, "Triangles: %d\n", mesh.FaceCount())
	fmt.Fprintf(out, "Closed:    %v\n", mesh.IsClosed())
	fmt.Fprintf(out, "Bad edges: %d\n", open)
	fmt.Fprintf(out, "Area:      %g\n", mesh.SurfaceArea())
	fmt.Fprintf(out, "Volume:    %g\n", mesh.Volume())
	if !b.IsEmpty() {
		fmt.Fprintf(out, "Bounds:    (%g, %g, %g) .. (%g, %g, %g)\n",
			b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
	return nil
}

func cmdConvert(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	sf := newSourceFlags(fs)
	if err := parse(fs, args, 2, "terraintool convert [options] <src> <out.{gat,png,raw,f32}>"); err != nil {
		return err
	}

	t, err := sf.load(fs.Arg(0))
	if err != nil {
		return err
	}

	path := fs.Arg(1)
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	values := t.Elevation()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gat":
		var gat *formats.GAT
		if gat, err = formats.NewGAT(t.Width(), t.Depth(), values); err == nil {
			_, err = gat.WriteTo(f)
		}
	case ".png":
		err = formats.EncodeHeightmapPNG(f, t.Width(), t.Depth(), values)
	case ".raw", ".f32":
		err = formats.WriteRawElevation(f, values)
	default:
		err = fmt.Errorf("unsupported output format: %s", filepath.Ext(path))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	fmt.Fprintf(out, "Wrote %d x %d grid to %s\n", t.Width(), t.Depth(), path)
	return nil
}

func cmdList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	if err := parse(fs, args, 1, "terraintool list <archive.grf>"); err != nil {
		return err
	}

	a, err := grf.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer a.Close()

	for _, name := range a.List() {
		e, _ := a.Stat(name)
		fmt.Fprintf(out, "%10d  %s\n", e.UncompressedSize, name)
	}
	fmt.Fprintf(out, "%d files\n", a.Len())
	return nil
}

func cmdPack(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pack", flag.ContinueOnError)
	dir := fs.String("dir", "data", "Archive directory the files are stored under")
	usage := "terraintool pack [-dir d] <archive.grf> <file>..."
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		return fmt.Errorf("%w: %s", errUsage, usage)
	}

	files := make([]grf.File, 0, fs.NArg()-1)
	for _, path := range fs.Args()[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		if *dir != "" {
			name = strings.TrimSuffix(*dir, "/") + "/" + name
		}
		files = append(files, grf.File{Name: name, Data: data})
	}

	path := fs.Arg(0)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = grf.Write(f, files)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return err
	}

	fmt.Fprintf(out, "Packed %d files into %s\n", len(files), path)
	return nil
}
