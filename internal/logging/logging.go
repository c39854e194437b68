// Package logging hands out component loggers that share one handler and one level.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	level = new(slog.LevelVar)

	mu   sync.RWMutex
	base slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
)

// handler forwards to the current base handler so loggers created at package
// init pick up a later SetOutput.
type handler struct {
	ops []func(slog.Handler) slog.Handler
}

func current() slog.Handler {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func (h handler) resolve() slog.Handler {
	out := current()
	for _, op := range h.ops {
		out = op(out)
	}
	return out
}

func (h handler) with(op func(slog.Handler) slog.Handler) handler {
	ops := make([]func(slog.Handler) slog.Handler, 0, len(h.ops)+1)
	return handler{ops: append(append(ops, h.ops...), op)}
}

func (h handler) Enabled(ctx context.Context, l slog.Level) bool { return h.resolve().Enabled(ctx, l) }

func (h handler) Handle(ctx context.Context, r slog.Record) error { return h.resolve().Handle(ctx, r) }

func (h handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h handler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

// Logger returns a logger tagged with the component name, e.g. Logger("capture").
func Logger(component string) *slog.Logger {
	return slog.New(handler{}).With("component", component)
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
}

// SetLevel sets the level for every logger. Accepts debug, info, warn or error.
func SetLevel(name string) error {
	l, err := ParseLevel(name)
	if err != nil {
		return err
	}
	level.Set(l)
	return nil
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
}
