package tilestore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirPack(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "3", "4"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "3", "4", "5.png"), []byte{0x89, 0x50}, 0644); err != nil {
		t.Fatal(err)
	}

	pack, err := OpenDir(root)
	if err != nil {
		t.Fatal(err)
	}
	defer pack.Close()

	data, err := pack.GetTile(3, 4, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte{0x89, 0x50}) {
		t.Errorf("got %v, want the fixture bytes", data)
	}

	_, err = pack.GetTile(3, 4, 6)
	if !errors.Is(err, ErrTileNotFound) {
		t.Fatalf("got err %v, want ErrTileNotFound", err)
	}
}

func TestOpenDirRejectsFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenDir(path); err == nil {
		t.Fatal("OpenDir accepted a regular file")
	}
}

func TestDiscoverPacksSkipsUnknownFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "overlay", "1", "0"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "overlay", "1", "0", "0.pbf"), []byte{1}, 0644); err != nil {
		t.Fatal(err)
	}

	packs, err := DiscoverPacks(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		for _, p := range packs {
			p.Close()
		}
	}()

	if len(packs) != 1 {
		t.Fatalf("discovered %d packs, want just the overlay directory", len(packs))
	}
	if _, ok := packs["overlay"]; !ok {
		t.Fatalf("overlay pack missing from %v", packs)
	}
}
