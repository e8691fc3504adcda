package tilestore

import (
	"fmt"
	"os"
	"path/filepath"
)

var dirPackExtensions = []string{"mvt", "pbf", "png", "jpg", "webp"}

// DirPack reads tiles from a plain z/x/y directory tree, the layout the
// disk seeding output produces.
type DirPack struct {
	root string
}

func OpenDir(root string) (*DirPack, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	return &DirPack{root: abs}, nil
}

func (p *DirPack) Close() error {
	return nil
}

func (p *DirPack) GetTile(z, x, y int) ([]byte, error) {
	for _, ext := range dirPackExtensions {
		path := filepath.Join(p.root, fmt.Sprintf("%d/%d/%d.%s", z, x, y, ext))

		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading tile file %s: %w", path, err)
		}
	}

	return nil, ErrTileNotFound
}
