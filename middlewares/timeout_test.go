package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/middlewares"
)

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("fast action passes", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(time.Second)(func(c *internal.Context) error {
			_, ok := c.Deadline()
			require.True(t, ok)
			return nil
		})
		require.NoError(t, handler(ctx))
	})

	t.Run("slow action reports a timeout", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(10 * time.Millisecond)(func(c *internal.Context) error {
			<-c.Done()
			return c.Err()
		})

		err := handler(ctx)
		require.True(t, middlewares.IsTimeoutError(err))
		te, ok := middlewares.AsTimeoutError(err)
		require.True(t, ok)
		require.Equal(t, 10*time.Millisecond, te.Duration)
		require.Equal(t, "request timeout after 10ms", te.Error())

		he := internal.AsHTTPError(err)
		require.NotNil(t, he)
		require.Equal(t, http.StatusGatewayTimeout, he.Code)
	})

	t.Run("written response wins over the timeout", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(10 * time.Millisecond)(func(c *internal.Context) error {
			<-c.Done()
			return c.String(http.StatusAccepted, "late")
		})

		require.NoError(t, handler(ctx))
		require.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("non-positive timeout uses the default", func(t *testing.T) {
		t.Parallel()

		ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.Timeout(0)(func(c *internal.Context) error {
			deadline, ok := c.Deadline()
			require.True(t, ok)
			require.WithinDuration(t, time.Now().Add(middlewares.DefaultTimeout), deadline, time.Second)
			return nil
		})
		require.NoError(t, handler(ctx))
	})
}

func TestTimeoutErrorHelpers(t *testing.T) {
	t.Parallel()

	require.False(t, middlewares.IsTimeoutError(http.ErrNoCookie))
	_, ok := middlewares.AsTimeoutError(nil)
	require.False(t, ok)
}
