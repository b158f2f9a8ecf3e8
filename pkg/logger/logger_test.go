package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

type traceKey struct{}

func traceExtractor(ctx context.Context) (slog.Attr, bool) {
	v, ok := ctx.Value(traceKey{}).(string)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.String("trace_id", v), true
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json with extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := logger.New(logger.WithOutput(&buf), logger.WithExtractors(traceExtractor, nil))

		ctx := context.WithValue(t.Context(), traceKey{}, "abc")
		l.InfoContext(ctx, "hello", slog.Int("n", 1))

		record := decode(t, &buf)
		require.Equal(t, "hello", record["msg"])
		require.Equal(t, "abc", record["trace_id"])
		require.InDelta(t, 1, record["n"], 0)
	})

	t.Run("extractor without a value adds nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := logger.New(logger.WithOutput(&buf), logger.WithExtractors(traceExtractor))
		l.InfoContext(t.Context(), "hello")

		require.NotContains(t, decode(t, &buf), "trace_id")
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
		l.Info("dropped")
		require.Zero(t, buf.Len())

		l.Warn("kept")
		require.Equal(t, "kept", decode(t, &buf)["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText))
		l.Info("hello", slog.String("k", "v"))

		require.Contains(t, buf.String(), "msg=hello")
		require.Contains(t, buf.String(), "k=v")
	})

	t.Run("extractors survive With", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		l := logger.New(logger.WithOutput(&buf), logger.WithExtractors(traceExtractor)).
			With(slog.String("app", "shop"))

		ctx := context.WithValue(t.Context(), traceKey{}, "xyz")
		l.InfoContext(ctx, "hello")

		record := decode(t, &buf)
		require.Equal(t, "shop", record["app"])
		require.Equal(t, "xyz", record["trace_id"])
	})
}

func TestCategory(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := logger.Category(logger.New(logger.WithOutput(&buf)), "dispatcher")
	l.Info("ready")

	require.Equal(t, "dispatcher", decode(t, &buf)["component"])

	require.NotNil(t, logger.Category(nil, "controller"))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	l := logger.NewNope()
	require.False(t, l.Enabled(t.Context(), slog.LevelError))
	l.Error("discarded")
}

func TestNewWithSentryWithoutDSN(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, flush := logger.NewWithSentry(logger.SentryConfig{}, logger.WithOutput(&buf), logger.WithExtractors(traceExtractor))

	ctx := context.WithValue(t.Context(), traceKey{}, "s1")
	l.ErrorContext(ctx, "failed", slog.String("error", "boom"))

	record := decode(t, &buf)
	require.Equal(t, "failed", record["msg"])
	require.Equal(t, "s1", record["trace_id"])
	require.True(t, flush(0))
}

type recordingHandler struct {
	records *[]string
	err     error
	level   slog.Level
	attrs   []slog.Attr
}

func (h *recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *recordingHandler) Handle(_ context.Context, rec slog.Record) error {
	parts := []string{rec.Message}
	for _, a := range h.attrs {
		parts = append(parts, a.String())
	}
	*h.records = append(*h.records, strings.Join(parts, " "))
	return h.err
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &recordingHandler{records: h.records, err: h.err, level: h.level, attrs: append(h.attrs, attrs...)}
}

func (h *recordingHandler) WithGroup(string) slog.Handler { return h }

func TestContextHandlerPassesErrors(t *testing.T) {
	t.Parallel()

	var records []string
	boom := errors.New("boom")
	h := logger.NewContextHandler(&recordingHandler{records: &records, err: boom}).
		WithAttrs([]slog.Attr{slog.String("k", "v")})

	err := h.Handle(t.Context(), slog.NewRecord(time.Time{}, slog.LevelInfo, "hello", 0))
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"hello k=v"}, records)
}
