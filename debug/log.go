package debug

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// nopHandler drops every record; Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var (
	mu     sync.Mutex
	file   *os.File
	logger atomic.Pointer[slog.Logger]
)

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// Enable starts debug logging to path, truncating it.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	l := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Store(l)
	l.Info("debug logging started", "path", path)
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	logger.Store(slog.New(nopHandler{}))
	if file != nil {
		file.Close()
		file = nil
	}
}

// Logger returns the active logger. Hand it to libraries that take a
// *slog.Logger so everything ends up in one file.
func Logger() *slog.Logger {
	return logger.Load()
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	l := logger.Load()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), "cat", category)
}

var (
	countersMu sync.Mutex
	counters   = make(map[string]int)
)

// LogEvery logs only every N calls (use for per-frame events)
func LogEvery(n int, category, format string, args ...any) {
	countersMu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	countersMu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
