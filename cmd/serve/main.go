package main

import (
	"flag"
	"log"
	"log/slog"
	gohttp "net/http"
	"os"
	"time"

	bridgehttp "github.com/wayfarerapp/go-tilebridge/http"
	"github.com/wayfarerapp/go-tilebridge/tilebridge"
	"github.com/wayfarerapp/go-tilebridge/tilestore"
)

func loggingMiddleware(logger *log.Logger) func(gohttp.Handler) gohttp.Handler {
	return func(next gohttp.Handler) gohttp.Handler {
		return gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
			defer func() {
				logger.Println(r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent())
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func main() {
	storeDir := flag.String("stores", "", "Directory holding the local tile packs (.mbtiles, .pmtiles, or z/x/y trees).")
	addr := flag.String("listen", "127.0.0.1:8080", "The address and port to listen on")
	flag.Parse()

	logger := log.New(os.Stdout, "http: ", log.LstdFlags)
	slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *storeDir == "" {
		logger.Fatal("Need to provide --stores parameter")
	}

	service := tilestore.NewService(*storeDir, slogger)
	if err := service.Start(); err != nil {
		logger.Fatalf("Couldn't start tile store: %v", err)
	}
	defer service.Close()

	client := tilebridge.NewStoreClient(service, slogger)
	adapter := tilebridge.NewAdapter(client, slogger)

	router := gohttp.NewServeMux()
	router.Handle(bridgehttp.TilePathPrefix+"/", bridgehttp.TileHandler(adapter))
	router.HandleFunc("/style.json", bridgehttp.StyleHandler())
	router.HandleFunc("/", defaultHandler)

	server := &gohttp.Server{
		Addr:         *addr,
		Handler:      loggingMiddleware(logger)(router),
		ErrorLog:     logger,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	logger.Printf("Serving tiles for sources %v on %s", service.Sources(), *addr)

	if err := server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		logger.Fatalf("Could not listen on %s: %v\n", *addr, err)
	}
}

func defaultHandler(w gohttp.ResponseWriter, r *gohttp.Request) {
	gohttp.NotFound(w, r)
}
