package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// New logs to stdout: JSON when running in Kubernetes or the prod/dev
// environments, coloured text otherwise.
func New() *slog.Logger {
	return NewWithWriter(os.Stdout, useJSON())
}

func useJSON() bool {
	if _, ok := os.LookupEnv("KUBERNETES_SERVICE_HOST"); ok {
		return true
	}
	switch os.Getenv("ENV") {
	case "prod", "dev":
		return true
	}
	return false
}

// NewWithWriter builds the handler chain on w. Every record passes through
// requestHandler, so request_id, trace ids and context attrs are attached.
func NewWithWriter(w io.Writer, useJSON bool) *slog.Logger {
	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})
	} else {
		handler = &levelColorHandler{next: slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})}
	}
	return slog.New(&requestHandler{next: handler})
}

func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxAttrsKey struct{}

// WithAttrs returns a copy of ctx whose log records also carry attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	prev, _ := ctx.Value(ctxAttrsKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(prev)+len(attrs))
	merged = append(merged, prev...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxAttrsKey{}, merged)
}

// requestHandler adds what the request context knows: the chi request id,
// the OTel trace and span ids, and attrs stored with WithAttrs.
type requestHandler struct {
	next slog.Handler
}

func (h *requestHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *requestHandler) Handle(ctx context.Context, r slog.Record) error {
	if reqID := chimw.GetReqID(ctx); reqID != "" {
		r.AddAttrs(slog.String("request_id", reqID))
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	if attrs, ok := ctx.Value(ctxAttrsKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, r)
}

func (h *requestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &requestHandler{next: h.next.WithAttrs(attrs)}
}

func (h *requestHandler) WithGroup(name string) slog.Handler {
	return &requestHandler{next: h.next.WithGroup(name)}
}

var levelColors = map[slog.Level]string{
	slog.LevelWarn:  "\x1b[33m",
	slog.LevelError: "\x1b[31m",
}

// levelColorHandler colours the message of warnings and errors for
// terminals.
type levelColorHandler struct {
	next slog.Handler
}

func (h *levelColorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *levelColorHandler) Handle(ctx context.Context, r slog.Record) error {
	color := ""
	switch {
	case r.Level >= slog.LevelError:
		color = levelColors[slog.LevelError]
	case r.Level >= slog.LevelWarn:
		color = levelColors[slog.LevelWarn]
	default:
		return h.next.Handle(ctx, r)
	}

	colored := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("%s%s\x1b[0m", color, r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		colored.AddAttrs(a)
		return true
	})
	return h.next.Handle(ctx, colored)
}

func (h *levelColorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelColorHandler{next: h.next.WithAttrs(attrs)}
}

func (h *levelColorHandler) WithGroup(name string) slog.Handler {
	return &levelColorHandler{next: h.next.WithGroup(name)}
}
