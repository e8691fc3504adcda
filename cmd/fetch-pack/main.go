package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/aaronland/go-string/random"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/schollz/progressbar/v3"
)

// progressWriterAt feeds download progress to the bar as s3manager writes
// chunks, which may arrive out of order.
type progressWriterAt struct {
	f   *os.File
	bar *progressbar.ProgressBar
}

func (w *progressWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n, err := w.f.WriteAt(p, off)
	w.bar.Add(n)
	return n, err
}

func tempSuffix() string {
	opts := random.DefaultOptions()
	opts.AlphaNumeric = true

	s, err := random.String(opts)
	if err != nil {
		log.Fatalf("Couldn't generate temp file suffix: %+v", err)
	}

	return s[:8]
}

func fetchPack(downloader *s3manager.Downloader, s3Client *s3.S3, bucket, key, storeDir string) error {
	head, err := s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}

	dest := filepath.Join(storeDir, filepath.Base(key))

	// Download next to the final path and rename, so the serve command never
	// opens a half-written pack.
	tmpPath := dest + ".part-" + tempSuffix()
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	bar := progressbar.DefaultBytes(aws.Int64Value(head.ContentLength), filepath.Base(key))

	_, err = downloader.Download(&progressWriterAt{f: tmpFile, bar: bar}, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, dest)
}

func main() {
	bucket := flag.String("bucket", "", "The S3 bucket holding prebuilt tile packs.")
	storeDir := flag.String("stores", "", "Local tile pack directory to download into.")
	flag.Parse()

	keys := flag.Args()

	if *bucket == "" {
		log.Fatalf("Bucket name (-bucket) is required")
	}
	if *storeDir == "" {
		log.Fatalf("Store directory (-stores) is required")
	}
	if len(keys) == 0 {
		log.Fatalf("Need at least one pack key to fetch")
	}

	if err := os.MkdirAll(*storeDir, 0755); err != nil {
		log.Fatalf("Couldn't create store directory: %+v", err)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		log.Fatalf("Couldn't create AWS session: %+v", err)
	}

	downloader := s3manager.NewDownloader(sess)
	s3Client := s3.New(sess)

	for _, key := range keys {
		if err := fetchPack(downloader, s3Client, *bucket, key, *storeDir); err != nil {
			log.Fatalf("Couldn't fetch pack %s: %+v", key, err)
		}
		log.Printf("Fetched %s", key)
	}
}
