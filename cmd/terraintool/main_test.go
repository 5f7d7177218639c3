package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shiffman/toxiclibs/internal/source"
	"github.com/shiffman/toxiclibs/pkg/formats"
)

// writeGAT writes a 3x3 table with a single peak of height 4 in the middle.
func writeGAT(t *testing.T) string {
	t.Helper()
	gat, err := formats.NewGAT(3, 3, []float32{0, 0, 0, 0, 4, 0, 0, 0, 0})
	if err != nil {
		t.Fatalf("NewGAT failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "peak.gat")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := gat.WriteTo(f); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	return path
}

func runCmd(t *testing.T, command string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(command, args, &out)
	return out.String(), err
}

func TestInfo(t *testing.T) {
	out, err := runCmd(t, "info", "-scale", "2", writeGAT(t))
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{
		"Grid:      3 x 3 cells",
		"Scale:     2",
		"Footprint: 4 x 4",
		"Heights:   0 .. 4",
		"Surface:   8 triangles",
		"Solid:     32 triangles",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestInfoFlat(t *testing.T) {
	out, err := runCmd(t, "info", "-width", "4", "-depth", "2", "flat")
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(out, "Grid:      4 x 2 cells") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestExportAndCheck(t *testing.T) {
	stl := filepath.Join(t.TempDir(), "peak.stl")
	out, err := runCmd(t, "export", "-solid", "-ground", "-1", "-o", stl, writeGAT(t))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.Contains(out, "Wrote 32 triangles") {
		t.Errorf("unexpected export output: %s", out)
	}

	out, err = runCmd(t, "check", stl)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	for _, want := range []string{"Triangles: 32", "Closed:    true", "Bad edges: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("check output missing %q:\n%s", want, out)
		}
	}
}

func TestExportSurfaceASCII(t *testing.T) {
	stl := filepath.Join(t.TempDir(), "surface.stl")
	if _, err := runCmd(t, "export", "-ascii", "-o", stl, writeGAT(t)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(stl)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "solid terrain") {
		t.Errorf("expected ASCII STL, got %q", data[:min(len(data), 20)])
	}

	out, _ := runCmd(t, "check", stl)
	if !strings.Contains(out, "Closed:    false") {
		t.Errorf("surface should be open:\n%s", out)
	}
}

func TestSample(t *testing.T) {
	out, err := runCmd(t, "sample", writeGAT(t), "0", "0")
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	// With scale 4 the world origin is grid (1.5, 1.5), between the peak
	// and its three flat neighbours.
	if !strings.Contains(out, "Height: 1\n") {
		t.Errorf("unexpected height:\n%s", out)
	}
	if !strings.Contains(out, "Surface: (") || !strings.Contains(out, "Normal:") {
		t.Errorf("expected a surface hit:\n%s", out)
	}

	out, err = runCmd(t, "sample", writeGAT(t), "100", "-100")
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if !strings.Contains(out, "Height: 0") || !strings.Contains(out, "Surface: no hit") {
		t.Errorf("expected a miss outside the grid:\n%s", out)
	}
}

func TestConvertRoundTrip(t *testing.T) {
	src := writeGAT(t)
	dir := t.TempDir()

	for _, ext := range []string{".gat", ".f32"} {
		path := filepath.Join(dir, "out"+ext)
		if _, err := runCmd(t, "convert", src, path); err != nil {
			t.Fatalf("convert to %s failed: %v", ext, err)
		}
		out, err := runCmd(t, "info", "-width", "3", "-depth", "3", path)
		if err != nil {
			t.Fatalf("info on %s failed: %v", ext, err)
		}
		if !strings.Contains(out, "Heights:   0 .. 4") {
			t.Errorf("%s lost heights:\n%s", ext, out)
		}
	}

	png := filepath.Join(dir, "out.png")
	if _, err := runCmd(t, "convert", src, png); err != nil {
		t.Fatalf("convert to png failed: %v", err)
	}
	out, _ := runCmd(t, "info", "-height-scale", "8", png)
	if !strings.Contains(out, "Heights:   0 .. 8") {
		t.Errorf("png heightmap should stretch to the height scale:\n%s", out)
	}
}

func TestPackAndList(t *testing.T) {
	src := writeGAT(t)
	archive := filepath.Join(t.TempDir(), "maps.grf")

	out, err := runCmd(t, "pack", archive, src)
	if err != nil {
		t.Fatalf("pack failed: %v", err)
	}
	if !strings.Contains(out, "Packed 1 files") {
		t.Errorf("unexpected pack output:\n%s", out)
	}

	out, err = runCmd(t, "list", archive)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "data/peak.gat") || !strings.Contains(out, "1 files") {
		t.Errorf("list output missing the packed map:\n%s", out)
	}

	out, err = runCmd(t, "info", archive+"#data/peak.gat")
	if err != nil {
		t.Fatalf("info on archive member failed: %v", err)
	}
	if !strings.Contains(out, "Grid:      3 x 3 cells") || !strings.Contains(out, "Heights:   0 .. 4") {
		t.Errorf("archive member lost its grid:\n%s", out)
	}
}

func TestConvertUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.obj")
	if _, err := runCmd(t, "convert", writeGAT(t), path); err == nil {
		t.Error("expected error for .obj output")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("failed conversion should not leave a file behind")
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
		want    error
	}{
		{"missing args", "info", nil, errUsage},
		{"too many args", "check", []string{"a.stl", "b.stl"}, errUsage},
		{"bad coordinate", "sample", []string{"flat", "x", "0"}, errUsage},
		{"stl source", "info", []string{"mesh.stl"}, source.ErrUnsupportedSource},
		{"missing file", "check", []string{"/nonexistent/file.stl"}, os.ErrNotExist},
		{"pack without files", "pack", []string{"out.grf"}, errUsage},
		{"missing archive", "list", []string{"/nonexistent/data.grf"}, os.ErrNotExist},
		{"missing member", "info", []string{"/nonexistent/data.grf#data/x.gat"}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCmd(t, tt.command, tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("run(%s) error = %v, want %v", tt.command, err, tt.want)
			}
		})
	}

	if _, err := runCmd(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}
