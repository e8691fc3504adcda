package tilestore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// PackMetadata is the key/value metadata carried by a tile pack: name,
// format, bounds, zoom range.
type PackMetadata struct {
	metadata map[string]string
}

func NewPackMetadata(metadata map[string]string) *PackMetadata {
	if metadata == nil {
		metadata = make(map[string]string)
	}
	return &PackMetadata{metadata: metadata}
}

func (m *PackMetadata) Get(k string) (string, bool) {
	v, exists := m.metadata[k]
	return v, exists
}

func (m *PackMetadata) Set(k string, v string) {
	m.metadata[k] = v
}

func (m *PackMetadata) Keys() []string {
	keys := make([]string, 0, len(m.metadata))
	for k := range m.metadata {
		keys = append(keys, k)
	}
	return keys
}

func (m *PackMetadata) Name() string {
	return m.metadata["name"]
}

func (m *PackMetadata) Format() string {
	return m.metadata["format"]
}

// Bounds parses the "bounds" entry, a west,south,east,north list of degrees.
func (m *PackMetadata) Bounds() (orb.Bound, error) {
	var bounds orb.Bound

	raw, exists := m.Get("bounds")
	if !exists {
		return bounds, fmt.Errorf("metadata is missing bounds")
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return bounds, fmt.Errorf("invalid bounds metadata %q", raw)
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return bounds, fmt.Errorf("parsing bounds component %q: %w", part, err)
		}
		vals[i] = v
	}

	return orb.Bound{
		Min: orb.Point{vals[0], vals[1]},
		Max: orb.Point{vals[2], vals[3]},
	}, nil
}

func (m *PackMetadata) SetBounds(b orb.Bound) {
	m.Set("bounds", fmt.Sprintf("%f,%f,%f,%f", b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()))
}

func (m *PackMetadata) MinZoom() (int, error) {
	return m.zoom("minzoom")
}

func (m *PackMetadata) MaxZoom() (int, error) {
	return m.zoom("maxzoom")
}

func (m *PackMetadata) zoom(key string) (int, error) {
	raw, exists := m.Get(key)
	if !exists {
		return 0, fmt.Errorf("metadata is missing %s", key)
	}

	z, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing %s value %q: %w", key, raw, err)
	}

	return z, nil
}
