package tilebridge

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxZoom is the highest zoom level the bridge will forward to the tile
// store. Packs are never built deeper than this.
const MaxZoom = 22

// TileCoordinate addresses a single tile inside a named local pack.
type TileCoordinate struct {
	Source string
	Z      int
	X      int
	Y      int
}

func (c TileCoordinate) String() string {
	return fmt.Sprintf("%s/%d/%d/%d", c.Source, c.Z, c.X, c.Y)
}

// ParseTileURL decodes a tile request URL into a TileCoordinate.
//
// The renderer issues URLs of the form scheme://<source>/<z>/<x>/<y>.
// Some renderers canonicalize the protocol root to scheme://./<source>/...,
// so a single leading "." segment is tolerated and stripped. The scheme
// prefix itself is optional, which lets the HTTP surface feed bare paths
// through the same parser.
func ParseTileURL(rawURL string) (TileCoordinate, error) {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}

	parts := strings.Split(rest, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}

	if len(segments) > 0 && segments[0] == "." {
		segments = segments[1:]
	}

	if len(segments) != 4 {
		return TileCoordinate{}, fmt.Errorf("%w: expected exactly source/z/x/y in %q", ErrInvalidTileRequest, rawURL)
	}

	source := segments[0]
	if source == "." || source == ".." {
		return TileCoordinate{}, fmt.Errorf("%w: bad source %q", ErrInvalidTileRequest, source)
	}

	z, err := strconv.Atoi(segments[1])
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("%w: zoom %q is not an integer", ErrInvalidTileRequest, segments[1])
	}

	x, err := strconv.Atoi(segments[2])
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("%w: x %q is not an integer", ErrInvalidTileRequest, segments[2])
	}

	y, err := strconv.Atoi(segments[3])
	if err != nil {
		return TileCoordinate{}, fmt.Errorf("%w: y %q is not an integer", ErrInvalidTileRequest, segments[3])
	}

	if z < 0 || z > MaxZoom {
		return TileCoordinate{}, fmt.Errorf("%w: zoom %d out of range [0,%d]", ErrInvalidTileRequest, z, MaxZoom)
	}

	if x < 0 || y < 0 {
		return TileCoordinate{}, fmt.Errorf("%w: negative tile coordinate %d/%d", ErrInvalidTileRequest, x, y)
	}

	return TileCoordinate{Source: source, Z: z, X: x, Y: y}, nil
}
