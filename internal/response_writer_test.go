package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("WriteHeader records status", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)
		rw.WriteHeader(http.StatusNotFound)

		require.Equal(t, http.StatusNotFound, rw.Status())
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.True(t, rw.Written())
	})

	t.Run("only the first WriteHeader counts", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)
		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusInternalServerError)

		require.Equal(t, http.StatusCreated, rw.Status())
		require.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Write sends implicit 200 and counts bytes", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)
		require.False(t, rw.Written())

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		_, err = rw.Write([]byte(" world"))
		require.NoError(t, err)

		require.True(t, rw.Written())
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(11), rw.Size())
		require.Equal(t, "hello world", rec.Body.String())
	})

	t.Run("hooks run once before the first write", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		var calls []string
		rw.OnBeforeWrite(func() {
			calls = append(calls, "first")
			rw.Header().Set("X-Hook", "yes")
		})
		rw.OnBeforeWrite(func() { calls = append(calls, "second") })

		_, _ = rw.Write([]byte("a"))
		_, _ = rw.Write([]byte("b"))

		require.Equal(t, []string{"first", "second"}, calls)
		require.Equal(t, "yes", rec.Header().Get("X-Hook"))
	})

	t.Run("Unwrap returns the original writer", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)
		require.Same(t, rec, rw.Unwrap())
	})
}
