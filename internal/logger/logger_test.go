package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mehdichaaki/dashbord/internal/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestRequestHandler(t *testing.T) {
	t.Run("AddsTraceIDs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, true)

		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		log.InfoContext(ctx, "user listed", "count", 2)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "user listed", record["msg"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", record["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", record["span_id"])
	})

	t.Run("NoSpan", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, true)

		log.Info("plain")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.NotContains(t, record, "trace_id")
	})

	t.Run("ColoredErrors", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, false)

		log.Error("boom")

		// TextHandler quotes control characters
		assert.Contains(t, buf.String(), `\x1b[31mboom\x1b[0m`)
	})

	t.Run("RequestID", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, true)

		handler := chimw.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.InfoContext(r.Context(), "users listed")
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set(chimw.RequestIDHeader, "req-42")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "req-42", record["request_id"])
	})

	t.Run("ContextAttrs", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, true)

		ctx := logger.WithAttrs(context.Background(), slog.String("user_id", "u1"))
		ctx = logger.WithAttrs(ctx, slog.String("entry_id", "e1"))
		log.InfoContext(ctx, "grade entry recorded")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "u1", record["user_id"])
		assert.Equal(t, "e1", record["entry_id"])
		assert.NotContains(t, record, "request_id")
	})

	t.Run("ColoredWarnings", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, false)

		log.Warn("slow")
		log.Info("fine")

		assert.Contains(t, buf.String(), `\x1b[33mslow\x1b[0m`)
		assert.Contains(t, buf.String(), "msg=fine")
	})
}
