package tilestore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrTileNotFound reports that a pack was consulted and confirmed it holds
// no tile at the requested coordinate. It is the expected answer for sparse
// regions and must be distinguished from transport or storage failures.
var ErrTileNotFound = errors.New("tile not found")

// Pack is a single local tile archive addressed by z/x/y. Implementations
// must be safe for concurrent reads.
type Pack interface {
	GetTile(z, x, y int) ([]byte, error)
	Close() error
}

// MetadataProvider is implemented by packs that carry descriptive metadata.
type MetadataProvider interface {
	Metadata() (*PackMetadata, error)
}

// DiscoverPacks opens every tile pack found directly under dir. The source
// name is the file name without its extension: basemap.mbtiles and a
// basemap/ directory both register as "basemap". Unrecognized entries are
// skipped with a log line rather than failing the whole store.
func DiscoverPacks(dir string, logger *slog.Logger) (map[string]Pack, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading pack directory %s: %w", dir, err)
	}

	packs := make(map[string]Pack)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		var pack Pack
		var source string

		switch {
		case entry.IsDir():
			source = entry.Name()
			pack, err = OpenDir(path)
		case strings.HasSuffix(entry.Name(), ".mbtiles"):
			source = strings.TrimSuffix(entry.Name(), ".mbtiles")
			pack, err = OpenMbtiles(path)
		case strings.HasSuffix(entry.Name(), ".pmtiles"):
			source = strings.TrimSuffix(entry.Name(), ".pmtiles")
			pack, err = OpenPmtiles(path)
		default:
			continue
		}

		if err != nil {
			logger.Warn("skipping unreadable pack", "path", path, "err", err)
			continue
		}

		if _, dup := packs[source]; dup {
			logger.Warn("duplicate pack source, keeping first", "source", source, "path", path)
			pack.Close()
			continue
		}

		packs[source] = pack
	}

	return packs, nil
}
