package tilebridge

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewStyle(t *testing.T) {
	style := NewStyle("http://127.0.0.1:8080")

	if style.Version != 8 {
		t.Errorf("style version = %d, want 8", style.Version)
	}
	if style.Glyphs != "http://127.0.0.1:8080/fonts/{fontstack}/{range}.pbf" {
		t.Errorf("unexpected glyphs template %q", style.Glyphs)
	}
	if style.Sprite != "http://127.0.0.1:8080/sprite" {
		t.Errorf("unexpected sprite URL %q", style.Sprite)
	}
	if len(style.Sources) != 0 || len(style.Layers) != 0 {
		t.Errorf("sources and layers should start empty, got %d/%d", len(style.Sources), len(style.Layers))
	}
}

func TestNewStyleTrimsTrailingSlash(t *testing.T) {
	a := NewStyle("http://localhost:9000")
	b := NewStyle("http://localhost:9000/")
	if a.Glyphs != b.Glyphs || a.Sprite != b.Sprite {
		t.Errorf("trailing slash changed the templates: %q vs %q", a.Glyphs, b.Glyphs)
	}
}

func TestStyleSourceSerialization(t *testing.T) {
	style := NewStyle("http://localhost:9000")
	style.Sources["basemap"] = StyleSource{
		Type:  "vector",
		Tiles: []string{"http://localhost:9000/tiles/basemap/{z}/{x}/{y}"},
	}

	data, err := json.Marshal(style)
	if err != nil {
		t.Fatal(err)
	}

	want := `"basemap":{"type":"vector","tiles":["http://localhost:9000/tiles/basemap/{z}/{x}/{y}"]}`
	if !strings.Contains(string(data), want) {
		t.Errorf("populated source did not serialize as expected: %s", data)
	}
}

func TestStyleSerializesEmptyCollections(t *testing.T) {
	data, err := json.Marshal(NewStyle("http://localhost:9000"))
	if err != nil {
		t.Fatal(err)
	}

	// The renderer rejects null sources/layers; they must serialize as
	// empty collections.
	s := string(data)
	if !strings.Contains(s, `"sources":{}`) {
		t.Errorf("sources did not serialize as an empty object: %s", s)
	}
	if !strings.Contains(s, `"layers":[]`) {
		t.Errorf("layers did not serialize as an empty list: %s", s)
	}
}
