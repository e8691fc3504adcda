package tilestore

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const webMercatorLatLimit float64 = 85.05112877980659

// Region describes the tile coverage to seed: a lon/lat bound and the zoom
// levels to materialize. InvertedY emits TMS rows instead of XYZ.
type Region struct {
	Bounds    orb.Bound
	Zooms     []maptile.Zoom
	InvertedY bool
}

// EnumerateTiles calls consumer for every tile the region covers. Bounds
// crossing the antimeridian are split into two boxes, and latitudes are
// clamped to the web mercator limit before tiling.
func EnumerateTiles(region Region, consumer func(maptile.Tile)) {
	for _, box := range splitBoxes(region.Bounds) {
		for _, z := range region.Zooms {
			minTile := maptile.At(box.Min, z)
			maxTile := maptile.At(box.Max, z)

			// The XYZ scheme counts rows from the north, opposite to lat
			maxTile.Y, minTile.Y = minTile.Y, maxTile.Y

			for x := minTile.X; x <= maxTile.X; x++ {
				for y := minTile.Y; y <= maxTile.Y; y++ {
					row := y
					if region.InvertedY {
						row = uint32(1)<<z - 1 - y
					}
					consumer(maptile.New(x, row, z))
				}
			}
		}
	}
}

// CountTiles returns how many tiles EnumerateTiles will emit for the region.
func CountTiles(region Region) uint64 {
	var count uint64
	for _, box := range splitBoxes(region.Bounds) {
		for _, z := range region.Zooms {
			minTile := maptile.At(box.Min, z)
			maxTile := maptile.At(box.Max, z)
			maxTile.Y, minTile.Y = minTile.Y, maxTile.Y

			count += uint64(maxTile.X-minTile.X+1) * uint64(maxTile.Y-minTile.Y+1)
		}
	}
	return count
}

func splitBoxes(bounds orb.Bound) []orb.Bound {
	var boxes []orb.Bound
	if bounds.Min.X() > bounds.Max.X() {
		boxes = []orb.Bound{
			{Min: orb.Point{-180.0, bounds.Min.Y()}, Max: bounds.Max},
			{Min: bounds.Min, Max: orb.Point{180.0, bounds.Max.Y()}},
		}
	} else {
		boxes = []orb.Bound{bounds}
	}

	clamped := make([]orb.Bound, len(boxes))
	for i, box := range boxes {
		clamped[i] = orb.Bound{
			Min: orb.Point{
				math.Max(-180.0, box.Min.X()),
				math.Max(-webMercatorLatLimit, box.Min.Y()),
			},
			Max: orb.Point{
				math.Min(180.0-0.00000001, box.Max.X()),
				math.Min(webMercatorLatLimit, box.Max.Y()),
			},
		}
	}

	return clamped
}
