package main

import (
	"bytes"
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/schollz/progressbar/v3"

	"github.com/wayfarerapp/go-tilebridge/tilestore"
)

const httpUserAgent = "go-tilebridge/1.0"

var zoomRangeRegex = regexp.MustCompile(`^\d+\-\d+$`)

type tileJob struct {
	tile maptile.Tile
	url  string
}

type tileResult struct {
	tile maptile.Tile
	data []byte
}

func parseBounds(raw string) (orb.Bound, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("bounding box must be 4 comma-separated numbers")
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bounding box component %q is not a number", part)
		}
		vals[i] = v
	}

	// south,west,north,east
	return orb.Bound{
		Min: orb.Point{vals[1], vals[0]},
		Max: orb.Point{vals[3], vals[2]},
	}, nil
}

func parseZooms(raw string) ([]maptile.Zoom, error) {
	if zoomRangeRegex.MatchString(raw) {
		zoomRange := strings.Split(raw, "-")

		minZoom, err := strconv.ParseUint(zoomRange[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse min zoom %q: %w", zoomRange[0], err)
		}

		maxZoom, err := strconv.ParseUint(zoomRange[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse max zoom %q: %w", zoomRange[1], err)
		}

		if minZoom > maxZoom {
			return nil, fmt.Errorf("invalid zoom range %q", raw)
		}

		zooms := make([]maptile.Zoom, 0, maxZoom-minZoom+1)
		for z := minZoom; z <= maxZoom; z++ {
			zooms = append(zooms, maptile.Zoom(z))
		}
		return zooms, nil
	}

	parts := strings.Split(raw, ",")
	zooms := make([]maptile.Zoom, len(parts))
	for i, part := range parts {
		z, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("zoom list could not be parsed: %w", err)
		}
		zooms[i] = maptile.Zoom(z)
	}
	return zooms, nil
}

func tileURL(template string, tile maptile.Tile) string {
	return strings.NewReplacer(
		"{x}", fmt.Sprintf("%d", tile.X),
		"{y}", fmt.Sprintf("%d", tile.Y),
		"{z}", fmt.Sprintf("%d", tile.Z)).Replace(template)
}

func fetchWithRetry(client *http.Client, url string, retries int) (*http.Response, error) {
	sleep := 500 * time.Millisecond

	for i := 0; i < retries; i++ {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Add("User-Agent", httpUserAgent)
		req.Header.Add("Accept-Encoding", "gzip")

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == 200 {
			return resp, nil
		}
		resp.Body.Close()

		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			time.Sleep(sleep)
			sleep *= 2
			if sleep > 30*time.Second {
				sleep = 30 * time.Second
			}
		}
	}

	return nil, fmt.Errorf("ran out of HTTP GET retries for %s", url)
}

func fetchWorker(wg *sync.WaitGroup, client *http.Client, jobs chan *tileJob, results chan *tileResult) {
	defer wg.Done()

	// Reuse the gzip machinery across jobs instead of allocating per tile
	bodyBuffer := bytes.NewBuffer(nil)
	bodyGzipper := gzip.NewWriter(bodyBuffer)

	for job := range jobs {
		resp, err := fetchWithRetry(client, job.url, 10)
		if err != nil {
			log.Printf("Skipping %s: %+v", job.url, err)
			continue
		}

		var body []byte
		if resp.Header.Get("Content-Encoding") == "gzip" {
			body, err = io.ReadAll(resp.Body)
		} else {
			bodyBuffer.Reset()
			bodyGzipper.Reset(bodyBuffer)

			if _, err = io.Copy(bodyGzipper, resp.Body); err == nil {
				if err = bodyGzipper.Close(); err == nil {
					body = append([]byte(nil), bodyBuffer.Bytes()...)
				}
			}
		}
		resp.Body.Close()

		if err != nil {
			log.Printf("Error reading tile body for %s: %+v", job.url, err)
			continue
		}

		results <- &tileResult{tile: job.tile, data: body}

		// Jitter to avoid hammering the upstream in lockstep
		time.Sleep(time.Duration(rand.Intn(50)) * time.Millisecond)
	}
}

func saveResults(wg *sync.WaitGroup, writer *tilestore.MbtilesWriter, results chan *tileResult, bar *progressbar.ProgressBar) {
	defer wg.Done()

	counter := 0
	for result := range results {
		t := result.tile
		if err := writer.Save(int(t.Z), int(t.X), int(t.Y), result.data); err != nil {
			log.Printf("Couldn't save tile %d/%d/%d: %+v", t.Z, t.X, t.Y, err)
			continue
		}
		counter++
		bar.Add(1)
	}
	log.Printf("Saved %d tiles", counter)
}

func main() {
	urlTemplate := flag.String("url-template", "", "URL template with {z}/{x}/{y} placeholders to fetch tiles from.")
	output := flag.String("output", "", "Path of the mbtiles pack to write.")
	name := flag.String("name", "", "Pack name to record in metadata. Defaults to the source host.")
	format := flag.String("format", "pbf", "Tile format recorded in metadata (pbf, png, jpg).")
	boundsStr := flag.String("bounds", "-85.05,-180.0,85.05,180.0", "Comma-separated bounding box in south,west,north,east format.")
	zoomsStr := flag.String("zooms", "0-10", "Comma-separated zoom list or a '{MIN}-{MAX}' range string.")
	workers := flag.Int("workers", 16, "Number of tile fetch workers.")
	timeout := flag.Int("timeout", 60, "HTTP client timeout per tile request, in seconds.")
	invertedY := flag.Bool("inverted-y", false, "Fetch with TMS y-values instead of XYZ.")
	flag.Parse()

	if *urlTemplate == "" {
		log.Fatalf("URL template (-url-template) is required")
	}
	if *output == "" {
		log.Fatalf("Output path (-output) is required")
	}

	bounds, err := parseBounds(*boundsStr)
	if err != nil {
		log.Fatalf("Bad bounds: %v", err)
	}

	zooms, err := parseZooms(*zoomsStr)
	if err != nil {
		log.Fatalf("Bad zooms: %v", err)
	}

	region := tilestore.Region{Bounds: bounds, Zooms: zooms, InvertedY: *invertedY}

	writer, err := tilestore.NewMbtilesWriter(*output)
	if err != nil {
		log.Fatalf("Couldn't create output pack: %+v", err)
	}

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 500,
			DisableCompression:  true,
		},
	}

	expected := tilestore.CountTiles(region)
	bar := progressbar.Default(int64(expected), "seeding")

	jobs := make(chan *tileJob, 1000)
	results := make(chan *tileResult, 1000)

	workerWG := &sync.WaitGroup{}
	for i := 0; i < *workers; i++ {
		workerWG.Add(1)
		go fetchWorker(workerWG, client, jobs, results)
	}

	saveWG := &sync.WaitGroup{}
	saveWG.Add(1)
	go saveResults(saveWG, writer, results, bar)

	tilestore.EnumerateTiles(region, func(tile maptile.Tile) {
		jobs <- &tileJob{tile: tile, url: tileURL(*urlTemplate, tile)}
	})
	close(jobs)

	workerWG.Wait()
	close(results)
	saveWG.Wait()

	packName := *name
	if packName == "" {
		packName = *output
	}

	minZoom, maxZoom := zooms[0], zooms[0]
	for _, z := range zooms {
		if z < minZoom {
			minZoom = z
		}
		if z > maxZoom {
			maxZoom = z
		}
	}

	metadata := tilestore.NewPackMetadata(map[string]string{
		"name":    packName,
		"format":  *format,
		"minzoom": fmt.Sprintf("%d", minZoom),
		"maxzoom": fmt.Sprintf("%d", maxZoom),
	})
	metadata.SetBounds(bounds)

	if err := writer.WriteMetadata(metadata); err != nil {
		log.Printf("Couldn't write pack metadata: %+v", err)
	}

	if err := writer.Close(); err != nil {
		log.Fatalf("Couldn't finalize output pack: %+v", err)
	}
}
