package tilebridge

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wayfarerapp/go-tilebridge/tilestore"
)

// TileSource is the boundary to the tile store service. Ready returns the
// one shared channel that closes once the store's packs are open; GetTile is
// a single message-passing round trip.
type TileSource interface {
	Ready() <-chan struct{}
	GetTile(ctx context.Context, source string, z, x, y int) ([]byte, error)
}

// StoreClient bridges validated coordinates to the tile store service and
// classifies the outcome. Absent tiles are an expected answer at high zooms
// and sparse regions, not a failure; the two are kept apart here so only
// genuine store trouble shows up at error level in the logs.
type StoreClient struct {
	src    TileSource
	logger *slog.Logger
}

func NewStoreClient(src TileSource, logger *slog.Logger) *StoreClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreClient{src: src, logger: logger}
}

// RequestTile waits for store readiness, fetches, and normalizes. It returns
// (nil, nil) both for a confirmed miss and for a store failure; the only
// error it surfaces is the context ending before an answer arrived. There is
// no serialization across calls: each request is its own round trip, and the
// store does its own queuing.
func (c *StoreClient) RequestTile(ctx context.Context, coord TileCoordinate) ([]byte, error) {
	select {
	case <-c.src.Ready():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	data, err := c.src.GetTile(ctx, coord.Source, coord.Z, coord.X, coord.Y)
	if err != nil {
		if errors.Is(err, tilestore.ErrTileNotFound) {
			c.logger.Debug("tile absent", "tile", coord.String())
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("tile store failure", "tile", coord.String(), "err", err)
		return nil, nil
	}

	return data, nil
}
