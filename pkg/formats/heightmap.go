package formats

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	// Register decoders for image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrEmptyHeightmap is returned for images without pixels.
var ErrEmptyHeightmap = errors.New("empty heightmap image")

// Heightmap is a grid of normalized heights decoded from a greyscale image.
// Image X maps to terrain X and image Y maps to terrain Z.
type Heightmap struct {
	Width  int
	Depth  int
	Values []float32 // row-major, each in [0, 1]
	Format string    // decoder name reported by image.Decode
}

// DecodeHeightmap reads a PNG, BMP or TIFF image and converts each pixel's
// luminance to a height in [0, 1]. 16-bit greyscale keeps full precision.
func DecodeHeightmap(r io.Reader) (*Heightmap, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding heightmap: %w", err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrEmptyHeightmap
	}

	hm := &Heightmap{
		Width:  b.Dx(),
		Depth:  b.Dy(),
		Values: make([]float32, b.Dx()*b.Dy()),
		Format: format,
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			hm.Values[(y-b.Min.Y)*hm.Width+(x-b.Min.X)] = float32(g.Y) / 0xffff
		}
	}
	return hm, nil
}

// LoadHeightmap decodes a heightmap image from disk.
func LoadHeightmap(path string) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening heightmap: %w", err)
	}
	defer f.Close()
	return DecodeHeightmap(f)
}

// EncodeHeightmapPNG writes values as a 16-bit greyscale PNG, stretched so
// the lowest value is black and the highest is white.
func EncodeHeightmapPNG(w io.Writer, width, depth int, values []float32) error {
	if width <= 0 || depth <= 0 || len(values) != width*depth {
		return fmt.Errorf("%w: %d values for %dx%d", ErrEmptyHeightmap, len(values), width, depth)
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo

	img := image.NewGray16(image.Rect(0, 0, width, depth))
	for i, v := range values {
		var g uint16
		if span > 0 {
			g = uint16((v-lo)/span*0xffff + 0.5)
		}
		img.SetGray16(i%width, i/width, color.Gray16{Y: g})
	}
	return png.Encode(w, img)
}
