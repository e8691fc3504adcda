package tilebridge

import (
	"context"
	"log/slog"
	"sync"
)

// logCounter records how many records were emitted per level, so tests can
// tell an absent tile (quiet) apart from a store failure (error-level).
type logCounter struct {
	mu     sync.Mutex
	counts map[slog.Level]int
}

func newLogCounter() (*logCounter, *slog.Logger) {
	h := &logCounter{counts: make(map[slog.Level]int)}
	return h, slog.New(h)
}

func (h *logCounter) Enabled(context.Context, slog.Level) bool { return true }

func (h *logCounter) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[r.Level]++
	return nil
}

func (h *logCounter) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *logCounter) WithGroup(string) slog.Handler      { return h }

func (h *logCounter) count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[level]
}
