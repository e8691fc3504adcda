package tilestore

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

func TestCountTiles(t *testing.T) {
	t.Run("whole world to z2", func(t *testing.T) {
		region := Region{
			Bounds: orb.Bound{
				Min: orb.Point{-180.0, -90.0},
				Max: orb.Point{180.0, 90.0},
			},
			Zooms: []maptile.Zoom{0, 1, 2},
		}

		if got := CountTiles(region); got != 21 {
			t.Fatalf("expected 21 tiles, got %d", got)
		}
	})

	t.Run("twin cities to z5", func(t *testing.T) {
		region := Region{
			Bounds: orb.Bound{
				Min: orb.Point{-93.5778, 44.6848},
				Max: orb.Point{-92.7482, 45.202},
			},
			Zooms: []maptile.Zoom{0, 1, 2, 3, 4, 5},
		}

		if got := CountTiles(region); got != 6 {
			t.Fatalf("expected 6 tiles, got %d", got)
		}
	})
}

func TestEnumerateMatchesCount(t *testing.T) {
	region := Region{
		Bounds: orb.Bound{
			Min: orb.Point{-93.5778, 44.6848},
			Max: orb.Point{-92.7482, 45.202},
		},
		Zooms: []maptile.Zoom{0, 1, 2, 3, 4, 5, 6, 7},
	}

	var enumerated uint64
	EnumerateTiles(region, func(maptile.Tile) {
		enumerated++
	})

	if counted := CountTiles(region); counted != enumerated {
		t.Fatalf("CountTiles says %d, EnumerateTiles emitted %d", counted, enumerated)
	}
}

func TestEnumerateAntimeridianSplit(t *testing.T) {
	// A bound crossing the antimeridian covers both edges of the grid
	region := Region{
		Bounds: orb.Bound{
			Min: orb.Point{170.0, -10.0},
			Max: orb.Point{-170.0, 10.0},
		},
		Zooms: []maptile.Zoom{2},
	}

	seen := make(map[uint32]bool)
	EnumerateTiles(region, func(tile maptile.Tile) {
		seen[tile.X] = true
	})

	if !seen[0] || !seen[3] {
		t.Fatalf("antimeridian region at z2 should touch columns 0 and 3, saw %v", seen)
	}
	if seen[1] || seen[2] {
		t.Fatalf("antimeridian region at z2 should skip middle columns, saw %v", seen)
	}
}

func TestEnumerateInvertedY(t *testing.T) {
	region := Region{
		Bounds: orb.Bound{
			Min: orb.Point{-93.5778, 44.6848},
			Max: orb.Point{-92.7482, 45.202},
		},
		Zooms: []maptile.Zoom{5},
	}

	var xyz, tms []maptile.Tile
	EnumerateTiles(region, func(tile maptile.Tile) { xyz = append(xyz, tile) })

	region.InvertedY = true
	EnumerateTiles(region, func(tile maptile.Tile) { tms = append(tms, tile) })

	if len(xyz) != 1 || len(tms) != 1 {
		t.Fatalf("expected a single z5 tile, got %d/%d", len(xyz), len(tms))
	}
	if tms[0].Y != uint32(1)<<5-1-xyz[0].Y {
		t.Fatalf("inverted y = %d does not mirror %d at z5", tms[0].Y, xyz[0].Y)
	}
}
