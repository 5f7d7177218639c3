package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// GAT format errors.
var (
	ErrInvalidGATMagic       = errors.New("invalid GAT magic: expected 'GRAT'")
	ErrUnsupportedGATVersion = errors.New("unsupported GAT version")
	ErrTruncatedGATData      = errors.New("truncated GAT data")
	ErrInvalidGATDimensions  = errors.New("invalid GAT dimensions")
)

const (
	gatMagic      = "GRAT"
	gatHeaderSize = 14
	gatCellSize   = 20
	gatMaxSide    = 4096
)

// GATVersion is the file version of an altitude table.
type GATVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v GATVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// GATCell is one cell of an altitude table.
type GATCell struct {
	// Corner altitudes: [0] bottom-left, [1] bottom-right, [2] top-left,
	// [3] top-right. GAT altitudes grow downward.
	Heights [4]float32
	// Type is the game specific cell flag; it is carried through untouched.
	Type uint32
}

// AverageHeight returns the mean of the four corner altitudes.
func (c GATCell) AverageHeight() float32 {
	return (c.Heights[0] + c.Heights[1] + c.Heights[2] + c.Heights[3]) / 4
}

// GAT is a Ground Altitude Table: a row-major grid of cells with per-corner
// altitudes.
type GAT struct {
	Version GATVersion
	Width   uint32
	Height  uint32
	Cells   []GATCell
}

// NewGAT builds a version 1.2 table whose cells are flat at the given
// Y-up elevation. values is row-major and must hold width*height entries.
func NewGAT(width, height int, values []float32) (*GAT, error) {
	if width <= 0 || height <= 0 || width > gatMaxSide || height > gatMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for %dx%d cells", ErrInvalidGATDimensions, len(values), width, height)
	}

	g := &GAT{
		Version: GATVersion{Major: 1, Minor: 2},
		Width:   uint32(width),
		Height:  uint32(height),
		Cells:   make([]GATCell, len(values)),
	}
	for i, h := range values {
		g.Cells[i].Heights = [4]float32{-h, -h, -h, -h}
	}
	return g, nil
}

// GetCell returns the cell at (x, y), or nil if out of bounds.
func (g *GAT) GetCell(x, y int) *GATCell {
	if x < 0 || y < 0 || x >= int(g.Width) || y >= int(g.Height) {
		return nil
	}
	return &g.Cells[y*int(g.Width)+x]
}

// Elevation returns one Y-up height per cell in row-major order: the negated
// average of the cell's corner altitudes.
func (g *GAT) Elevation() []float32 {
	out := make([]float32, len(g.Cells))
	for i, c := range g.Cells {
		out[i] = -c.AverageHeight()
	}
	return out
}

// AltitudeRange returns the minimum and maximum raw corner altitude.
func (g *GAT) AltitudeRange() (lo, hi float32) {
	if len(g.Cells) == 0 {
		return 0, 0
	}
	lo, hi = g.Cells[0].Heights[0], g.Cells[0].Heights[0]
	for _, c := range g.Cells {
		for _, h := range c.Heights {
			lo = min(lo, h)
			hi = max(hi, h)
		}
	}
	return lo, hi
}

// ParseGAT parses an altitude table from raw bytes.
func ParseGAT(data []byte) (*GAT, error) {
	if len(data) < gatHeaderSize {
		return nil, ErrTruncatedGATData
	}
	if string(data[0:4]) != gatMagic {
		return nil, ErrInvalidGATMagic
	}

	// Stored as [minor, major]. 1.x through 3.x share the cell layout.
	version := GATVersion{Major: data[5], Minor: data[4]}
	if version.Major < 1 || version.Major > 3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGATVersion, version)
	}

	width := binary.LittleEndian.Uint32(data[6:10])
	height := binary.LittleEndian.Uint32(data[10:14])
	if width == 0 || height == 0 || width > gatMaxSide || height > gatMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGATDimensions, width, height)
	}

	count := int(width * height)
	body := data[gatHeaderSize:]
	if len(body) < count*gatCellSize {
		return nil, fmt.Errorf("%w: %d cells need %d bytes, have %d",
			ErrTruncatedGATData, count, count*gatCellSize, len(body))
	}

	g := &GAT{
		Version: version,
		Width:   width,
		Height:  height,
		Cells:   make([]GATCell, count),
	}
	if err := binary.Read(bytes.NewReader(body), binary.LittleEndian, g.Cells); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedGATData, err)
	}
	return g, nil
}

// ParseGATFile parses an altitude table from disk.
func ParseGATFile(path string) (*GAT, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GAT file: %w", err)
	}
	return ParseGAT(data)
}

// WriteTo encodes the table in GAT format.
func (g *GAT) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.Grow(gatHeaderSize + len(g.Cells)*gatCellSize)

	buf.WriteString(gatMagic)
	buf.WriteByte(g.Version.Minor)
	buf.WriteByte(g.Version.Major)
	_ = binary.Write(&buf, binary.LittleEndian, g.Width)
	_ = binary.Write(&buf, binary.LittleEndian, g.Height)
	_ = binary.Write(&buf, binary.LittleEndian, g.Cells)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
