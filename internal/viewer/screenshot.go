package viewer

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// writeScreenshot saves bottom-up RGBA rows, as glReadPixels returns them,
// as a top-down PNG.
func writeScreenshot(path string, pixels []byte, width, height int) error {
	if len(pixels) != width*height*4 || len(pixels) == 0 {
		return fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return f.Close()
}
