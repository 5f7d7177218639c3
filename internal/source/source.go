// Package source builds a terrain from the configured elevation source.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shiffman/toxiclibs/internal/config"
	"github.com/shiffman/toxiclibs/internal/logger"
	"github.com/shiffman/toxiclibs/pkg/formats"
	"github.com/shiffman/toxiclibs/pkg/grf"
	"github.com/shiffman/toxiclibs/pkg/terrain"
)

// ErrUnsupportedSource is returned for file types that carry no elevation grid.
var ErrUnsupportedSource = errors.New("unsupported terrain source")

// Kind classifies a source path.
type Kind int

const (
	KindFlat Kind = iota
	KindGAT
	KindImage
	KindRaw
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindGAT:
		return "gat"
	case KindImage:
		return "image"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// archiveSep separates a GRF archive path from the member inside it, as in
// "data.grf#data/prontera.gat".
const archiveSep = "#"

// splitArchive reports the archive and member named by path.
func splitArchive(path string) (archive, member string, ok bool) {
	archive, member, ok = strings.Cut(path, archiveSep)
	if !ok || !strings.EqualFold(filepath.Ext(archive), ".grf") {
		return "", "", false
	}
	return archive, member, true
}

// KindOf returns the loader used for path, judged by its extension. Archive
// members are judged by the member name.
func KindOf(path string) Kind {
	if path == "" {
		return KindFlat
	}
	if _, member, ok := splitArchive(path); ok {
		path = member
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gat":
		return KindGAT
	case ".png", ".bmp", ".tif", ".tiff":
		return KindImage
	case ".raw", ".f32":
		return KindRaw
	default:
		return KindUnknown
	}
}

// Load builds a terrain from cfg.Source. An empty source gives a flat grid of
// cfg.Width by cfg.Depth cells.
func Load(cfg config.TerrainConfig) (*terrain.Terrain, error) {
	log := logger.Named("source")
	start := time.Now()
	kind := KindOf(cfg.Source)

	var (
		t   *terrain.Terrain
		err error
	)
	switch kind {
	case KindFlat:
		t, err = terrain.New(cfg.Width, cfg.Depth, cfg.Scale)
	case KindGAT:
		t, err = loadGAT(cfg)
	case KindImage:
		t, err = loadImage(cfg)
	case KindRaw:
		t, err = loadRaw(cfg)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedSource, cfg.Source)
	}
	if err != nil {
		log.Warn("terrain load failed",
			zap.String("source", cfg.Source),
			zap.Stringer("kind", kind),
			zap.Error(err))
		return nil, err
	}

	lo, hi := t.HeightRange()
	log.Info("terrain loaded",
		zap.String("source", cfg.Source),
		zap.Stringer("kind", kind),
		zap.Int("width", t.Width()),
		zap.Int("depth", t.Depth()),
		zap.Float32("scale", t.Scale()),
		zap.Float32("min_height", lo),
		zap.Float32("max_height", hi),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// readSource returns the bytes behind path, reading archive members out of
// their GRF archive.
func readSource(path string) ([]byte, error) {
	archive, member, ok := splitArchive(path)
	if !ok {
		return os.ReadFile(path)
	}

	a, err := grf.Open(archive)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	logger.Debug("opened archive",
		zap.String("archive", archive),
		zap.Int("files", a.Len()))
	return a.Read(member)
}

func loadGAT(cfg config.TerrainConfig) (*terrain.Terrain, error) {
	data, err := readSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	gat, err := formats.ParseGAT(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Source, err)
	}
	logger.Debug("parsed GAT",
		zap.String("path", cfg.Source),
		zap.Stringer("version", gat.Version),
		zap.Uint32("width", gat.Width),
		zap.Uint32("height", gat.Height))

	return fromValues(int(gat.Width), int(gat.Height), cfg.Scale, gat.Elevation())
}

func loadImage(cfg config.TerrainConfig) (*terrain.Terrain, error) {
	data, err := readSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	hm, err := formats.DecodeHeightmap(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Source, err)
	}
	logger.Debug("decoded heightmap",
		zap.String("path", cfg.Source),
		zap.String("format", hm.Format),
		zap.Int("width", hm.Width),
		zap.Int("depth", hm.Depth))

	values := make([]float32, len(hm.Values))
	for i, v := range hm.Values {
		values[i] = v * cfg.HeightScale
	}
	return fromValues(hm.Width, hm.Depth, cfg.Scale, values)
}

func loadRaw(cfg config.TerrainConfig) (*terrain.Terrain, error) {
	data, err := readSource(cfg.Source)
	if err != nil {
		return nil, err
	}
	values, err := formats.ReadRawElevation(bytes.NewReader(data), cfg.Width, cfg.Depth)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Source, err)
	}
	return fromValues(cfg.Width, cfg.Depth, cfg.Scale, values)
}

func fromValues(width, depth int, scale float32, values []float32) (*terrain.Terrain, error) {
	t, err := terrain.New(width, depth, scale)
	if err != nil {
		return nil, err
	}
	if err := t.SetElevation(values); err != nil {
		return nil, err
	}
	return t, nil
}
