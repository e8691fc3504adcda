package tilestore

import (
	"bytes"
	"fmt"
	"os"

	"github.com/protomaps/go-pmtiles/pmtiles"
)

// Directory entries with RunLength 0 point at leaf directories; the v3
// format allows at most this much nesting.
const maxDirectoryDepth = 3

// PmtilesPack reads tiles from a single-file pmtiles v3 archive.
type PmtilesPack struct {
	f      *os.File
	header pmtiles.HeaderV3
}

func OpenPmtiles(path string) (*PmtilesPack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	headerBytes := make([]byte, pmtiles.HeaderV3LenBytes)
	if _, err := f.ReadAt(headerBytes, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("reading pmtiles header: %w", err)
	}

	header, err := pmtiles.DeserializeHeader(headerBytes)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parsing pmtiles header: %w", err)
	}

	return &PmtilesPack{f: f, header: header}, nil
}

func (p *PmtilesPack) Close() error {
	return p.f.Close()
}

func (p *PmtilesPack) GetTile(z, x, y int) ([]byte, error) {
	if z < int(p.header.MinZoom) || z > int(p.header.MaxZoom) {
		return nil, ErrTileNotFound
	}

	tileID := pmtiles.ZxyToID(uint8(z), uint32(x), uint32(y))

	offset := p.header.RootOffset
	length := p.header.RootLength

	for depth := 0; depth <= maxDirectoryDepth; depth++ {
		entries, err := p.readDirectory(offset, length)
		if err != nil {
			return nil, err
		}

		entry, ok := pmtiles.FindTile(entries, tileID)
		if !ok {
			return nil, ErrTileNotFound
		}

		if entry.RunLength > 0 {
			data := make([]byte, entry.Length)
			if _, err := p.f.ReadAt(data, int64(p.header.TileDataOffset+entry.Offset)); err != nil {
				return nil, fmt.Errorf("reading tile data for %d/%d/%d: %w", z, x, y, err)
			}
			return data, nil
		}

		offset = p.header.LeafDirectoryOffset + entry.Offset
		length = uint64(entry.Length)
	}

	return nil, fmt.Errorf("pmtiles directory nesting exceeds %d levels", maxDirectoryDepth)
}

func (p *PmtilesPack) readDirectory(offset uint64, length uint64) ([]pmtiles.EntryV3, error) {
	raw := make([]byte, length)
	if _, err := p.f.ReadAt(raw, int64(offset)); err != nil {
		return nil, fmt.Errorf("reading pmtiles directory: %w", err)
	}

	entries := pmtiles.DeserializeEntries(bytes.NewBuffer(raw), p.header.InternalCompression)

	return entries, nil
}

func (p *PmtilesPack) Metadata() (*PackMetadata, error) {
	metadata := map[string]string{
		"minzoom": fmt.Sprintf("%d", p.header.MinZoom),
		"maxzoom": fmt.Sprintf("%d", p.header.MaxZoom),
		"bounds": fmt.Sprintf("%f,%f,%f,%f",
			float64(p.header.MinLonE7)/1e7,
			float64(p.header.MinLatE7)/1e7,
			float64(p.header.MaxLonE7)/1e7,
			float64(p.header.MaxLatE7)/1e7),
	}

	if p.header.TileType == pmtiles.Mvt {
		metadata["format"] = "pbf"
	}

	return NewPackMetadata(metadata), nil
}
