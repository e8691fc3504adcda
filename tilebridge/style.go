package tilebridge

import "strings"

// Style is a MapLibre-shaped style document. Only glyphs, sprite, sources
// and layers matter to this bridge; sources and layers start empty and are
// populated by the application at runtime.
type Style struct {
	Version int                    `json:"version"`
	Name    string                 `json:"name"`
	Sources map[string]StyleSource `json:"sources"`
	Glyphs  string                 `json:"glyphs"`
	Sprite  string                 `json:"sprite"`
	Layers  []any                  `json:"layers"`
}

type StyleSource struct {
	Type  string   `json:"type"`
	Tiles []string `json:"tiles"`
}

// NewStyle builds the style document handed to the renderer at map
// construction. Glyph and sprite assets are served same-origin by the
// application, so both templates are rooted at the given origin.
func NewStyle(origin string) Style {
	origin = strings.TrimSuffix(origin, "/")

	return Style{
		Version: 8,
		Name:    "offline",
		Sources: map[string]StyleSource{},
		Glyphs:  origin + "/fonts/{fontstack}/{range}.pbf",
		Sprite:  origin + "/sprite",
		Layers:  []any{},
	}
}
