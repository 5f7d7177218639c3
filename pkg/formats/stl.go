package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shiffman/toxiclibs/pkg/geom"
	"github.com/shiffman/toxiclibs/pkg/math"
)

// STL format errors.
var (
	ErrTruncatedSTLData = errors.New("truncated STL data")
	ErrInvalidSTLCount  = errors.New("invalid STL triangle count")
	ErrInvalidSTLASCII  = errors.New("invalid ASCII STL")
)

const (
	stlHeaderSize   = 80
	stlFacetSize    = 50
	stlMaxTriangles = 1 << 26
)

// WriteSTLBinary encodes the mesh as binary STL. Facet normals are derived
// from the counter-clockwise winding of each face.
func WriteSTLBinary(w io.Writer, mesh *geom.Mesh) error {
	bw := bufio.NewWriter(w)

	var header [stlHeaderSize]byte
	copy(header[:], "binary STL: "+mesh.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(mesh.Faces))); err != nil {
		return err
	}

	var facet [stlFacetSize]byte
	for _, f := range mesh.Faces {
		putVec(facet[0:], f.Normal())
		putVec(facet[12:], f.A)
		putVec(facet[24:], f.B)
		putVec(facet[36:], f.C)
		// facet[48:50] is the attribute byte count, always zero.
		if _, err := bw.Write(facet[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func putVec(b []byte, v math.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(v.X))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(v.Y))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(v.Z))
}

func getVec(b []byte) math.Vec3 {
	return math.Vec3{
		X: gomath.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Y: gomath.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		Z: gomath.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
	}
}

// ReadSTLBinary decodes a binary STL stream. Stored facet normals are
// ignored; the vertex order defines the face orientation.
func ReadSTLBinary(r io.Reader) (*geom.Mesh, error) {
	var header [stlHeaderSize + 4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedSTLData)
	}

	count := binary.LittleEndian.Uint32(header[stlHeaderSize:])
	if count > stlMaxTriangles {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSTLCount, count)
	}

	name := strings.TrimSpace(string(bytes.TrimRight(header[:stlHeaderSize], "\x00")))
	name = strings.TrimPrefix(name, "binary STL: ")
	mesh := geom.NewMesh(name, int(count))

	br := bufio.NewReader(r)
	var facet [stlFacetSize]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, facet[:]); err != nil {
			return nil, fmt.Errorf("%w: facet %d of %d", ErrTruncatedSTLData, i, count)
		}
		mesh.AddFace(getVec(facet[12:]), getVec(facet[24:]), getVec(facet[36:]))
	}
	return mesh, nil
}

// WriteSTLASCII encodes the mesh as ASCII STL.
func WriteSTLASCII(w io.Writer, mesh *geom.Mesh) error {
	bw := bufio.NewWriter(w)
	name := mesh.Name
	if name == "" {
		name = "mesh"
	}

	fmt.Fprintf(bw, "solid %s\n", name)
	for _, f := range mesh.Faces {
		n := f.Normal()
		fmt.Fprintf(bw, "  facet normal %s\n", formatVec(n))
		bw.WriteString("    outer loop\n")
		for _, v := range [3]math.Vec3{f.A, f.B, f.C} {
			fmt.Fprintf(bw, "      vertex %s\n", formatVec(v))
		}
		bw.WriteString("    endloop\n")
		bw.WriteString("  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

func formatVec(v math.Vec3) string {
	return strconv.FormatFloat(float64(v.X), 'e', -1, 32) + " " +
		strconv.FormatFloat(float64(v.Y), 'e', -1, 32) + " " +
		strconv.FormatFloat(float64(v.Z), 'e', -1, 32)
}

// ReadSTLASCII decodes an ASCII STL stream.
func ReadSTLASCII(r io.Reader) (*geom.Mesh, error) {
	sc := bufio.NewScanner(r)
	mesh := geom.NewMesh("", 0)

	var corners []math.Vec3
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 {
				mesh.Name = strings.Join(fields[1:], " ")
			}
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%w: line %d: malformed vertex", ErrInvalidSTLASCII, line)
			}
			var p [3]float32
			for i := range p {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTLASCII, line, err)
				}
				p[i] = float32(f)
			}
			corners = append(corners, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		case "endloop":
			if len(corners) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet with %d vertices", ErrInvalidSTLASCII, line, len(corners))
			}
			mesh.AddFace(corners[0], corners[1], corners[2])
			corners = corners[:0]
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(corners) != 0 {
		return nil, fmt.Errorf("%w: unterminated facet", ErrInvalidSTLASCII)
	}
	return mesh, nil
}

// SaveSTL writes the mesh to path, creating parent directories as needed.
func SaveSTL(path string, mesh *geom.Mesh, ascii bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if ascii {
		err = WriteSTLASCII(f, mesh)
	} else {
		err = WriteSTLBinary(f, mesh)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing STL %s: %w", path, err)
	}
	return nil
}

// LoadSTL reads a binary or ASCII STL file. A file is treated as ASCII when
// it starts with "solid" and its size does not match the binary layout.
func LoadSTL(path string) (*geom.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	if isASCIISTL(data) {
		return ReadSTLASCII(bytes.NewReader(data))
	}
	return ReadSTLBinary(bytes.NewReader(data))
}

func isASCIISTL(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("solid")) {
		return false
	}
	if len(data) >= stlHeaderSize+4 {
		count := binary.LittleEndian.Uint32(data[stlHeaderSize:])
		if len(data) == stlHeaderSize+4+int(count)*stlFacetSize {
			return false
		}
	}
	return true
}
