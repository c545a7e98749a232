package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/myrjola/jigsawroom/internal/errors"
)

type contextKey string

const slogAttrs contextKey = "slogAttrs"

// ContextHandler decorates a [slog.Handler] with attributes carried in [context.Context].
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler wraps h so that attributes stored with [WithAttrs] end up in every record.
func NewContextHandler(h slog.Handler) ContextHandler {
	return ContextHandler{Handler: h}
}

// Handle adds the context attributes to r before passing it on.
func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogAttrs).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	if err := h.Handler.Handle(ctx, r); err != nil {
		return errors.Wrap(err, "handle log record")
	}
	return nil
}

// WithAttrs returns a copy of ctx whose log records will include attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(slogAttrs).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, slogAttrs, merged)
}

// NewLogger builds the application logger: text records on w, debug level, context attributes included.
func NewLogger(w io.Writer, addSource bool) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   addSource,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	})))
}
