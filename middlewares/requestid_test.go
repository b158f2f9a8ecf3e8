package middlewares_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/middlewares"
	"github.com/dmitrymomot/dispatch/pkg/logger"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates a UUID", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		var got string
		handler := middlewares.RequestID()(func(c *internal.Context) error {
			got = middlewares.GetRequestID(c)
			return nil
		})
		require.NoError(t, handler(ctx))

		_, err := uuid.Parse(got)
		require.NoError(t, err)
		require.Equal(t, got, rec.Header().Get("X-Request-ID"))
	})

	t.Run("keeps the upstream ID", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "corr-1")
		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, req)

		handler := middlewares.RequestID()(func(*internal.Context) error { return nil })
		require.NoError(t, handler(ctx))
		require.Equal(t, "corr-1", middlewares.GetRequestID(ctx))
	})

	t.Run("custom headers and generator", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "ignored")
		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, req)

		handler := middlewares.RequestID(
			middlewares.WithRequestIDHeaders("X-Trace"),
			middlewares.WithRequestIDGenerator(func() string { return "fixed" }),
			middlewares.WithRequestIDResponseHeader("X-Trace"),
		)(func(*internal.Context) error { return nil })
		require.NoError(t, handler(ctx))
		require.Equal(t, "fixed", rec.Header().Get("X-Trace"))
	})

	t.Run("stamps HTTP errors", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "req-9")
		ctx := newTestContext(httptest.NewRecorder(), req)

		handler := middlewares.RequestID()(func(*internal.Context) error {
			return internal.NewHTTPError(http.StatusNotFound, "missing")
		})
		he := internal.AsHTTPError(handler(ctx))
		require.NotNil(t, he)
		require.Equal(t, "req-9", he.RequestID)
	})

	t.Run("without the middleware", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.Empty(t, middlewares.GetRequestID(ctx))
	})
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := internal.MustNew(
		internal.WithCustomLogger(logger.New(
			logger.WithOutput(&buf),
			logger.WithExtractors(middlewares.RequestIDExtractor()),
		)),
		internal.WithControllers(panicController{}),
		internal.WithMiddleware(middlewares.RequestID(), func(next internal.ActionFunc) internal.ActionFunc {
			return func(c *internal.Context) error {
				c.LogInfo("serving")
				return next(c)
			}
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/fine", nil)
	req.Header.Set("X-Request-ID", "req-42")
	app.ServeHTTP(httptest.NewRecorder(), req)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	require.Equal(t, "serving", record["msg"])
	require.Equal(t, "req-42", record["request_id"])
}
