// Package grf reads and writes GRF 0x200 archives, the zlib-packed
// container Ragnarok Online ships its map files in.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	magic      = "Master of Magic"
	headerSize = 46
	version    = 0x200

	// The stored file count is offset by the seed plus seven.
	countBias = 7

	entryFixedSize = 17

	flagFile        = 0x01
	flagMixedCrypt  = 0x02
	flagHeaderCrypt = 0x04
)

var (
	ErrInvalidArchive     = errors.New("invalid GRF archive")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrNotFound           = errors.New("file not found in archive")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

type header struct {
	Magic       [16]byte
	Key         [14]byte
	TableOffset uint32
	Seed        uint32
	FileCount   uint32
	Version     uint32
}

// Entry describes one stored file.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Encrypted reports whether the entry uses either DES scheme.
func (e *Entry) Encrypted() bool {
	return e.Flags&(flagMixedCrypt|flagHeaderCrypt) != 0
}

// Archive is an opened GRF archive. Lookups are case-insensitive and accept
// either path separator.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	entries map[string]*Entry
	names   []string
}

// Open opens the archive at path.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	a, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f
	return a, nil
}

// NewReader reads the header and file table from r.
func NewReader(r io.ReaderAt) (*Archive, error) {
	var raw [headerSize]byte
	if _, err := r.ReadAt(raw[:], 0); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrInvalidArchive, err)
	}
	var h header
	if err := binary.Read(bytes.NewReader(raw[:]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if string(bytes.TrimRight(h.Magic[:], "\x00")) != magic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidArchive)
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, h.Version)
	}

	a := &Archive{r: r, entries: make(map[string]*Entry)}
	if err := a.readTable(h); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) readTable(h header) error {
	offset := int64(h.TableOffset) + headerSize

	var sizes [8]byte
	if _, err := a.r.ReadAt(sizes[:], offset); err != nil {
		return fmt.Errorf("%w: reading file table: %v", ErrInvalidArchive, err)
	}
	compressed := binary.LittleEndian.Uint32(sizes[0:])
	uncompressed := binary.LittleEndian.Uint32(sizes[4:])

	packed := make([]byte, compressed)
	if _, err := a.r.ReadAt(packed, offset+8); err != nil {
		return fmt.Errorf("%w: reading file table: %v", ErrInvalidArchive, err)
	}
	table, err := inflate(packed, uncompressed)
	if err != nil {
		return fmt.Errorf("%w: file table: %v", ErrInvalidArchive, err)
	}

	if h.FileCount < h.Seed+countBias {
		return fmt.Errorf("%w: file count %d below seed", ErrInvalidArchive, h.FileCount)
	}
	count := h.FileCount - h.Seed - countBias

	pos := 0
	for range count {
		end := bytes.IndexByte(table[pos:], 0)
		if end < 0 || pos+end+1+entryFixedSize > len(table) {
			return fmt.Errorf("%w: truncated file table", ErrInvalidArchive)
		}
		rawName := table[pos : pos+end]
		pos += end + 1

		fields := table[pos : pos+entryFixedSize]
		pos += entryFixedSize

		e := &Entry{
			Name:             normalizeName(decodeName(rawName)),
			CompressedSize:   binary.LittleEndian.Uint32(fields[0:]),
			AlignedSize:      binary.LittleEndian.Uint32(fields[4:]),
			UncompressedSize: binary.LittleEndian.Uint32(fields[8:]),
			Flags:            fields[12],
			Offset:           binary.LittleEndian.Uint32(fields[13:]),
		}
		// Directory records carry no data.
		if e.Flags&flagFile == 0 {
			continue
		}
		if _, dup := a.entries[e.Name]; !dup {
			a.names = append(a.names, e.Name)
		}
		a.entries[e.Name] = e
	}
	sort.Strings(a.names)
	return nil
}

// Close releases the underlying file when the archive was opened by path.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

// List returns every stored file name in sorted order.
func (a *Archive) List() []string {
	return append([]string(nil), a.names...)
}

// Len returns the number of stored files.
func (a *Archive) Len() int { return len(a.names) }

// Stat returns the entry for name.
func (a *Archive) Stat(name string) (*Entry, bool) {
	e, ok := a.entries[normalizeName(name)]
	return e, ok
}

// Contains reports whether name is stored in the archive.
func (a *Archive) Contains(name string) bool {
	_, ok := a.Stat(name)
	return ok
}

// Read returns the decompressed contents of name.
func (a *Archive) Read(name string) ([]byte, error) {
	e, ok := a.Stat(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if e.Encrypted() {
		return nil, fmt.Errorf("%w: %s", ErrEncrypted, name)
	}
	if e.CompressedSize > e.AlignedSize {
		return nil, fmt.Errorf("%w: %s: compressed size exceeds stored size", ErrInvalidArchive, name)
	}

	stored := make([]byte, e.AlignedSize)
	if _, err := a.r.ReadAt(stored, int64(e.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidArchive, name, err)
	}
	if e.CompressedSize == e.UncompressedSize {
		return stored[:e.UncompressedSize], nil
	}
	data, err := inflate(stored[:e.CompressedSize], e.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArchive, name, err)
	}
	return data, nil
}

func inflate(packed []byte, size uint32) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(packed))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
