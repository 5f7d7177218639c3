package formats

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func TestHeightmapPNG_RoundTrip(t *testing.T) {
	values := []float32{0, 0.25, 0.5, 1, 0.75, 0.125}

	var buf bytes.Buffer
	if err := EncodeHeightmapPNG(&buf, 3, 2, values); err != nil {
		t.Fatalf("EncodeHeightmapPNG failed: %v", err)
	}
	hm, err := DecodeHeightmap(&buf)
	if err != nil {
		t.Fatalf("DecodeHeightmap failed: %v", err)
	}

	if hm.Format != "png" || hm.Width != 3 || hm.Depth != 2 {
		t.Fatalf("decoded %s %dx%d, want png 3x2", hm.Format, hm.Width, hm.Depth)
	}
	for i, v := range hm.Values {
		if d := v - values[i]; d > 1e-4 || d < -1e-4 {
			t.Errorf("Values[%d] = %v, want %v", i, v, values[i])
		}
	}
}

func TestHeightmap_Stretches(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeHeightmapPNG(&buf, 2, 1, []float32{-10, 30}); err != nil {
		t.Fatalf("EncodeHeightmapPNG failed: %v", err)
	}
	hm, _ := DecodeHeightmap(&buf)
	if hm.Values[0] != 0 || hm.Values[1] != 1 {
		t.Errorf("Values = %v, want [0 1]", hm.Values)
	}
}

func TestHeightmapBMP(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 255})
	img.SetGray(0, 1, color.Gray{Y: 51})
	img.SetGray(1, 1, color.Gray{Y: 255})

	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		t.Fatalf("bmp.Encode failed: %v", err)
	}
	hm, err := DecodeHeightmap(&buf)
	if err != nil {
		t.Fatalf("DecodeHeightmap failed: %v", err)
	}
	if hm.Format != "bmp" {
		t.Errorf("Format = %q, want bmp", hm.Format)
	}
	want := []float32{0, 1, 0.2, 1}
	for i, v := range hm.Values {
		if d := v - want[i]; d > 1e-4 || d < -1e-4 {
			t.Errorf("Values[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestLoadHeightmapTIFF(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 3, 1))
	img.SetGray16(0, 0, color.Gray16{Y: 0})
	img.SetGray16(1, 0, color.Gray16{Y: 0x8000})
	img.SetGray16(2, 0, color.Gray16{Y: 0xffff})

	path := filepath.Join(t.TempDir(), "height.tiff")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("tiff.Encode failed: %v", err)
	}
	f.Close()

	hm, err := LoadHeightmap(path)
	if err != nil {
		t.Fatalf("LoadHeightmap failed: %v", err)
	}
	if hm.Format != "tiff" || hm.Width != 3 || hm.Depth != 1 {
		t.Fatalf("decoded %s %dx%d, want tiff 3x1", hm.Format, hm.Width, hm.Depth)
	}
	if hm.Values[1] != float32(0x8000)/0xffff {
		t.Errorf("Values[1] = %v, want full 16-bit precision", hm.Values[1])
	}
}

func TestDecodeHeightmap_Invalid(t *testing.T) {
	if _, err := DecodeHeightmap(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("expected error for garbage input")
	}
	if err := EncodeHeightmapPNG(&bytes.Buffer{}, 2, 2, []float32{1}); !errors.Is(err, ErrEmptyHeightmap) {
		t.Errorf("EncodeHeightmapPNG size mismatch error = %v", err)
	}
}
