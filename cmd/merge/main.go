package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/wayfarerapp/go-tilebridge/tilestore"
)

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func main() {
	outputFilename := flag.String("output", "", "The output mbtiles pack to write to")
	flag.Parse()
	inputFilenames := flag.Args()

	if *outputFilename == "" {
		log.Fatalf("Must specify --output path")
	}

	if len(inputFilenames) == 0 {
		log.Fatalf("Must specify at least one input path")
	}

	log.Printf("Reading %s and writing them to %s", strings.Join(inputFilenames, ", "), *outputFilename)

	if pathExists(*outputFilename) {
		log.Fatalf("Output path %s already exists and cannot be overwritten", *outputFilename)
	}

	writer, err := tilestore.NewMbtilesWriter(*outputFilename)
	if err != nil {
		log.Fatalf("Couldn't create output pack: %+v", err)
	}

	for _, inputFilename := range inputFilenames {
		pack, err := tilestore.OpenMbtiles(inputFilename)
		if err != nil {
			log.Fatalf("Couldn't read input pack %s: %+v", inputFilename, err)
		}

		err = pack.VisitAllTiles(func(z, x, y int, data []byte) {
			if err := writer.Save(z, x, y, data); err != nil {
				log.Printf("Couldn't save tile %d/%d/%d: %+v", z, x, y, err)
			}
		})
		if err != nil {
			log.Fatalf("Couldn't read tiles from %s: %+v", inputFilename, err)
		}
		pack.Close()
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("Couldn't finalize output pack: %+v", err)
	}
}
