package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// File is one file to be stored by Write.
type File struct {
	Name string
	Data []byte
}

// Write stores files as an unencrypted GRF 0x200 archive. Files that do not
// shrink under zlib are stored as is.
func Write(w io.Writer, files []File) error {
	var (
		body  bytes.Buffer
		table bytes.Buffer
	)
	for _, f := range files {
		name, err := encodeName(f.Name)
		if err != nil {
			return fmt.Errorf("encoding name %q: %w", f.Name, err)
		}
		packed, err := deflate(f.Data)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", f.Name, err)
		}
		// Equal sizes mark an entry as stored uncompressed.
		if len(packed) >= len(f.Data) {
			packed = f.Data
		}

		var fields [entryFixedSize]byte
		binary.LittleEndian.PutUint32(fields[0:], uint32(len(packed)))
		binary.LittleEndian.PutUint32(fields[4:], uint32(len(packed)))
		binary.LittleEndian.PutUint32(fields[8:], uint32(len(f.Data)))
		fields[12] = flagFile
		binary.LittleEndian.PutUint32(fields[13:], uint32(body.Len()))

		table.Write(name)
		table.WriteByte(0)
		table.Write(fields[:])
		body.Write(packed)
	}

	packedTable, err := deflate(table.Bytes())
	if err != nil {
		return fmt.Errorf("compressing file table: %w", err)
	}

	h := header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + countBias,
		Version:     version,
	}
	copy(h.Magic[:], magic)

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	var sizes [8]byte
	binary.LittleEndian.PutUint32(sizes[0:], uint32(len(packedTable)))
	binary.LittleEndian.PutUint32(sizes[4:], uint32(table.Len()))
	if _, err := w.Write(sizes[:]); err != nil {
		return err
	}
	_, err = w.Write(packedTable)
	return err
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
