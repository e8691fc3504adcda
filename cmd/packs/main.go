package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/wayfarerapp/go-tilebridge/tilestore"
)

func main() {
	storeDir := flag.String("stores", "", "Directory holding the local tile packs.")
	flag.Parse()

	if *storeDir == "" {
		log.Fatalf("Store directory (-stores) is required")
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	packs, err := tilestore.DiscoverPacks(*storeDir, slogger)
	if err != nil {
		log.Fatalf("Couldn't read store directory: %+v", err)
	}

	for source, pack := range packs {
		fmt.Printf("%s\n", source)

		provider, ok := pack.(tilestore.MetadataProvider)
		if !ok {
			fmt.Printf("  (no metadata)\n")
			pack.Close()
			continue
		}

		metadata, err := provider.Metadata()
		if err != nil {
			fmt.Printf("  metadata unreadable: %v\n", err)
			pack.Close()
			continue
		}

		if name := metadata.Name(); name != "" {
			fmt.Printf("  name: %s\n", name)
		}
		if format := metadata.Format(); format != "" {
			fmt.Printf("  format: %s\n", format)
		}
		if minZoom, err := metadata.MinZoom(); err == nil {
			maxZoom, _ := metadata.MaxZoom()
			fmt.Printf("  zooms: %d-%d\n", minZoom, maxZoom)
		}
		if bounds, err := metadata.Bounds(); err == nil {
			fmt.Printf("  bounds: %v\n", bounds)
		}

		pack.Close()
	}
}
