package tilebridge

import (
	"context"
	"log/slog"
)

// RequestKind tags the sub-requests a renderer may issue against the tile
// scheme. Only tile requests reach the store; the other kinds exist so the
// renderer's probes for auxiliary resources resolve instead of erroring.
type RequestKind string

const (
	KindTile   RequestKind = "tile"
	KindJSON   RequestKind = "json"
	KindString RequestKind = "string"
)

// Response is what the renderer gets back for every request. Data is nil for
// json probes, and a zero-length slice whenever there is nothing to draw --
// the renderer cannot tell a missing tile from a failed one, and does not
// need to.
type Response struct {
	Data []byte
}

// TileClient fetches tile bytes for a validated coordinate. A nil slice with
// a nil error means the tile does not exist.
type TileClient interface {
	RequestTile(ctx context.Context, coord TileCoordinate) ([]byte, error)
}

// Adapter is the single handler registered for the tile scheme. Renderers
// issue bursts of concurrent requests during pan/zoom and expect every one
// of them to resolve, so Handle never returns an error and never panics
// outward. A failed or missing tile renders blank; the renderer re-requests
// on the next viewport change if it still cares.
type Adapter struct {
	client TileClient
	logger *slog.Logger
}

func NewAdapter(client TileClient, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{client: client, logger: logger}
}

// Handle runs the parse -> dispatch -> normalize pipeline for one request.
func (a *Adapter) Handle(ctx context.Context, rawURL string, kind RequestKind) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("tile pipeline panic", "url", rawURL, "panic", r)
			resp = Response{Data: []byte{}}
		}
	}()

	switch kind {
	case KindJSON:
		return Response{Data: nil}
	case KindString:
		return Response{Data: []byte{}}
	}

	coord, err := ParseTileURL(rawURL)
	if err != nil {
		a.logger.Warn("malformed tile request", "url", rawURL, "err", err)
		return Response{Data: []byte{}}
	}

	data, err := a.client.RequestTile(ctx, coord)
	if err != nil {
		// Already classified and logged by the client; err here means the
		// request was abandoned (context ended) rather than answered.
		a.logger.Warn("tile request abandoned", "tile", coord.String(), "err", err)
		return Response{Data: []byte{}}
	}

	if data == nil {
		return Response{Data: []byte{}}
	}

	return Response{Data: data}
}
