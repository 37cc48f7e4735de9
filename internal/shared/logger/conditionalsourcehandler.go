package logger

import (
	"context"
	"log/slog"
	"runtime"
)

type conditionalSourceHandler struct {
	handler    slog.Handler
	sourceFrom slog.Level
}

// NewConditionalSourceHandler wraps a handler so that records at or above
// sourceFrom carry their source location. The wrapped handler must be built
// without AddSource.
//
//	handler := NewConditionalSourceHandler(tint.NewHandler(os.Stdout, opts), slog.LevelWarn)
func NewConditionalSourceHandler(handler slog.Handler, sourceFrom slog.Level) slog.Handler {
	return &conditionalSourceHandler{
		handler:    handler,
		sourceFrom: sourceFrom,
	}
}

func (h *conditionalSourceHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.sourceFrom && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		r.AddAttrs(slog.Any(slog.SourceKey, &slog.Source{
			Function: f.Function,
			File:     f.File,
			Line:     f.Line,
		}))
	}

	return h.handler.Handle(ctx, r)
}

func (h *conditionalSourceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &conditionalSourceHandler{
		handler:    h.handler.WithAttrs(attrs),
		sourceFrom: h.sourceFrom,
	}
}

func (h *conditionalSourceHandler) WithGroup(name string) slog.Handler {
	return &conditionalSourceHandler{
		handler:    h.handler.WithGroup(name),
		sourceFrom: h.sourceFrom,
	}
}

func (h *conditionalSourceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}
