package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidRawSize is returned when a raw grid does not match its dimensions.
var ErrInvalidRawSize = errors.New("invalid raw elevation size")

// ReadRawElevation reads width*depth little-endian float32 heights in
// row-major order. Trailing data is an error.
func ReadRawElevation(r io.Reader, width, depth int) ([]float32, error) {
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidRawSize, width, depth)
	}

	values := make([]float32, width*depth)
	if err := binary.Read(r, binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("%w: want %d values: %v", ErrInvalidRawSize, len(values), err)
	}

	var extra [1]byte
	if n, _ := r.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("%w: trailing data after %d values", ErrInvalidRawSize, len(values))
	}
	return values, nil
}

// WriteRawElevation writes heights as little-endian float32 values.
func WriteRawElevation(w io.Writer, values []float32) error {
	return binary.Write(w, binary.LittleEndian, values)
}
