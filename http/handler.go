package http

import (
	"encoding/json"
	"log"
	gohttp "net/http"
	"strings"

	"github.com/wayfarerapp/go-tilebridge/tilebridge"
)

// TilePathPrefix is where the tile scheme is mounted on the local server.
const TilePathPrefix = "/tiles"

// TileHandler exposes the protocol adapter over HTTP. The renderer's custom
// scheme is pointed at this endpoint, so the response contract matches the
// adapter's: every request resolves, and an empty body (204) means nothing
// to draw.
func TileHandler(adapter *tilebridge.Adapter) gohttp.HandlerFunc {
	return func(w gohttp.ResponseWriter, r *gohttp.Request) {
		rawURL := strings.TrimPrefix(r.URL.Path, TilePathPrefix)

		resp := adapter.Handle(r.Context(), rawURL, tilebridge.KindTile)
		if len(resp.Data) == 0 {
			w.WriteHeader(gohttp.StatusNoContent)
			return
		}

		if isGzipped(resp.Data) {
			if strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				w.Header().Set("Content-Encoding", "gzip")
			} else {
				log.Printf("Requester doesn't accept gzip but the pack stores gzip payloads")
			}
		}

		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(resp.Data)
	}
}

// StyleHandler serves the style document the renderer loads at map
// construction, with asset templates rooted at the requesting origin.
func StyleHandler() gohttp.HandlerFunc {
	return func(w gohttp.ResponseWriter, r *gohttp.Request) {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}

		style := tilebridge.NewStyle(scheme + "://" + r.Host)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(style); err != nil {
			log.Printf("Error encoding style document: %+v", err)
		}
	}
}

// Pack payloads may be stored gzip-compressed; sniff the magic bytes rather
// than trusting metadata.
func isGzipped(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}
