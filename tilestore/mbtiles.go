package tilestore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Register sqlite3 database driver
)

// MbtilesPack reads tiles from an mbtiles archive. Rows are stored in the
// TMS scheme, so the Y coordinate is flipped on the way in.
type MbtilesPack struct {
	db *sql.DB
}

func OpenMbtiles(path string) (*MbtilesPack, error) {
	db, err := sql.Open("sqlite3", path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	return &MbtilesPack{db: db}, nil
}

func (p *MbtilesPack) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *MbtilesPack) GetTile(z, x, y int) ([]byte, error) {
	flippedY := (1 << uint(z)) - 1 - y

	var data []byte
	row := p.db.QueryRow("SELECT tile_data FROM tiles WHERE zoom_level=? AND tile_column=? AND tile_row=? LIMIT 1", z, x, flippedY)
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTileNotFound
		}
		return nil, fmt.Errorf("querying tile %d/%d/%d: %w", z, x, y, err)
	}

	return data, nil
}

// VisitAllTiles runs visitor on every tile in the archive, with coordinates
// in the XYZ scheme.
func (p *MbtilesPack) VisitAllTiles(visitor func(z, x, y int, data []byte)) error {
	rows, err := p.db.Query("SELECT zoom_level, tile_column, tile_row, tile_data FROM tiles")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var z, x, tmsY int
		var data []byte
		if err := rows.Scan(&z, &x, &tmsY, &data); err != nil {
			return fmt.Errorf("scanning tile row: %w", err)
		}
		visitor(z, x, (1<<uint(z))-1-tmsY, data)
	}

	return rows.Err()
}

func (p *MbtilesPack) Metadata() (*PackMetadata, error) {
	rows, err := p.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scanning metadata row: %w", err)
		}
		metadata[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return NewPackMetadata(metadata), nil
}
