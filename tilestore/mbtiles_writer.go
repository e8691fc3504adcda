package tilestore

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"

	_ "github.com/mattn/go-sqlite3" // Register sqlite3 database driver
)

const writerBatchSize = 1000

// MbtilesWriter builds an mbtiles pack. Identical tile payloads are stored
// once and referenced by content hash; writes are batched into transactions.
type MbtilesWriter struct {
	db         *sql.DB
	txn        *sql.Tx
	batchCount int
	hasSchema  bool
}

func NewMbtilesWriter(path string) (*MbtilesWriter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &MbtilesWriter{db: db}, nil
}

func (w *MbtilesWriter) createSchema() error {
	if w.hasSchema {
		return nil
	}

	if _, err := w.db.Exec(`
		BEGIN TRANSACTION;
		CREATE TABLE IF NOT EXISTS map (
			zoom_level INTEGER NOT NULL,
			tile_column INTEGER NOT NULL,
			tile_row INTEGER NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS map_index ON map (zoom_level, tile_column, tile_row);
		CREATE TABLE IF NOT EXISTS images (
			tile_data BLOB NOT NULL,
			tile_id TEXT NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS images_id ON images (tile_id);
		CREATE TABLE IF NOT EXISTS metadata (
			name TEXT,
			value TEXT
		);
		CREATE UNIQUE INDEX IF NOT EXISTS name ON metadata (name);
		CREATE VIEW IF NOT EXISTS tiles AS
		SELECT
			map.zoom_level AS zoom_level,
			map.tile_column AS tile_column,
			map.tile_row AS tile_row,
			images.tile_data AS tile_data
		FROM map
		JOIN images ON images.tile_id = map.tile_id;
		COMMIT;
		PRAGMA synchronous=OFF;
	`); err != nil {
		return err
	}

	w.hasSchema = true
	return nil
}

// Save stores one tile, taking XYZ coordinates and writing the TMS row the
// mbtiles format requires.
func (w *MbtilesWriter) Save(z, x, y int, data []byte) error {
	if err := w.createSchema(); err != nil {
		return err
	}

	if w.txn == nil {
		tx, err := w.db.Begin()
		if err != nil {
			return err
		}
		w.txn = tx
	}

	hash := md5.Sum(data)
	tileID := hex.EncodeToString(hash[:])

	if _, err := w.txn.Exec("INSERT OR REPLACE INTO images (tile_id, tile_data) VALUES (?, ?);", tileID, data); err != nil {
		return err
	}

	tmsY := (1 << uint(z)) - 1 - y
	if _, err := w.txn.Exec("INSERT OR REPLACE INTO map (zoom_level, tile_column, tile_row, tile_id) VALUES (?, ?, ?, ?);", z, x, tmsY, tileID); err != nil {
		return err
	}

	w.batchCount++
	if w.batchCount%writerBatchSize == 0 {
		if err := w.txn.Commit(); err != nil {
			return err
		}
		w.batchCount = 0
		w.txn = nil
	}

	return nil
}

// WriteMetadata replaces the pack's metadata entries.
func (w *MbtilesWriter) WriteMetadata(metadata *PackMetadata) error {
	if err := w.createSchema(); err != nil {
		return err
	}

	if w.txn != nil {
		if err := w.txn.Commit(); err != nil {
			return err
		}
		w.txn = nil
		w.batchCount = 0
	}

	for _, key := range metadata.Keys() {
		value, _ := metadata.Get(key)
		if _, err := w.db.Exec("INSERT OR REPLACE INTO metadata (name, value) VALUES (?, ?);", key, value); err != nil {
			return err
		}
	}

	return nil
}

func (w *MbtilesWriter) Close() error {
	var err error

	if w.txn != nil {
		err = w.txn.Commit()
	}

	if w.db != nil {
		if err2 := w.db.Close(); err2 != nil {
			err = err2
		}
	}

	return err
}
