package tilestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

type tileRequest struct {
	source  string
	z, x, y int
	reply   chan tileReply
}

type tileReply struct {
	data []byte
	err  error
}

// Service hosts a directory of tile packs behind a request channel, the
// way a dedicated worker context would. Callers never touch pack state
// directly: coordinates go in as messages, bytes or an error come back.
// Each request is answered concurrently; no ordering is guaranteed between
// distinct requests.
type Service struct {
	dir    string
	logger *slog.Logger

	packs    map[string]Pack
	requests chan *tileRequest
	ready    chan struct{}
	quit     chan struct{}

	started   bool
	serving   sync.WaitGroup
	loopDone  chan struct{}
	closeOnce sync.Once
}

func NewService(dir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		dir:      dir,
		logger:   logger,
		requests: make(chan *tileRequest),
		ready:    make(chan struct{}),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Start opens every pack under the service directory, signals readiness,
// and begins serving requests from its own goroutine.
func (s *Service) Start() error {
	packs, err := DiscoverPacks(s.dir, s.logger)
	if err != nil {
		return err
	}

	s.packs = packs
	s.logger.Info("tile store ready", "dir", s.dir, "sources", s.Sources())

	close(s.ready)
	s.started = true
	go s.run()

	return nil
}

// Ready returns the channel that closes once all packs are open. Every
// caller waits on this same channel; there is no per-caller handshake.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Sources lists the pack names the store can answer for, sorted.
func (s *Service) Sources() []string {
	sources := make([]string, 0, len(s.packs))
	for source := range s.packs {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources
}

// GetTile performs one round trip to the store. A confirmed miss comes back
// as ErrTileNotFound; any other error is a storage failure. The request runs
// to completion inside the store even if ctx ends first -- tile payloads are
// small enough that an orphaned answer costs nothing.
func (s *Service) GetTile(ctx context.Context, source string, z, x, y int) ([]byte, error) {
	req := &tileRequest{
		source: source,
		z:      z,
		x:      x,
		y:      y,
		reply:  make(chan tileReply, 1),
	}

	select {
	case s.requests <- req:
	case <-s.quit:
		return nil, errors.New("tile store is closed")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case rep := <-req.reply:
		return rep.data, rep.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Service) run() {
	defer close(s.loopDone)

	for {
		select {
		case <-s.quit:
			return
		case req := <-s.requests:
			s.serving.Add(1)
			go func() {
				defer s.serving.Done()
				s.serve(req)
			}()
		}
	}
}

func (s *Service) serve(req *tileRequest) {
	pack, ok := s.packs[req.source]
	if !ok {
		// An unknown source renders blank, same as a sparse region.
		req.reply <- tileReply{err: fmt.Errorf("no pack for source %q: %w", req.source, ErrTileNotFound)}
		return
	}

	data, err := pack.GetTile(req.z, req.x, req.y)
	req.reply <- tileReply{data: data, err: err}
}

// Close stops the request loop, lets in-flight requests finish, then closes
// all packs.
func (s *Service) Close() error {
	var err error

	s.closeOnce.Do(func() {
		close(s.quit)
		if s.started {
			<-s.loopDone
			s.serving.Wait()
		}
		for source, pack := range s.packs {
			if err2 := pack.Close(); err2 != nil {
				s.logger.Warn("closing pack", "source", source, "err", err2)
				err = err2
			}
		}
	})

	return err
}
