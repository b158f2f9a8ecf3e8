package dispatch_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/middlewares"
)

type itemKey struct{}

// catalogController serves /catalog/{id}/view through a three-link chain.
type catalogController struct{}

func (h *catalogController) Routes(r dispatch.Router) {
	r.Auto(func(c *dispatch.Context) error {
		c.SetHeader("X-Catalog", "yes")
		return nil
	})
	r.Action("catalog", ":Chained(/):PathPart(catalog):CaptureArgs(0)", nil)
	r.Action("item", ":Chained(catalog):PathPart:CaptureArgs(1)", func(c *dispatch.Context) error {
		id, ok := dispatch.Arg[int](c, 0)
		if !ok {
			return dispatch.NewHTTPError(http.StatusBadRequest, "bad id")
		}
		c.Set(itemKey{}, id)
		return nil
	})
	r.Action("view", ":Chained(item):PathPart(view):Args(0)", func(c *dispatch.Context) error {
		return c.JSON(http.StatusOK, map[string]int{"id": dispatch.StashValue[int](c, itemKey{})})
	})
	r.Action("search", `:Regex(^catalog/search/(\w+)$)`, func(c *dispatch.Context) error {
		term, _ := dispatch.Capture[string](c, 0)
		return c.String(http.StatusOK, "search:"+term)
	})
}

// RootController answers / and links to the catalog.
type RootController struct{}

func (*RootController) Namespace() string { return "" }

func (h *RootController) Routes(r dispatch.Router) {
	r.Action("index", ":Path:Args(0)", func(c *dispatch.Context) error {
		view := c.Dispatcher().GetAction("view", "catalog")
		return c.String(http.StatusOK, c.URIForAction(view, []string{"7"}, nil, nil))
	})
}

func newApp(t *testing.T, opts ...dispatch.Option) *dispatch.App {
	t.Helper()
	app, err := dispatch.New(append([]dispatch.Option{
		dispatch.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		dispatch.WithControllers(&RootController{}, &catalogController{}),
	}, opts...)...)
	require.NoError(t, err)
	return app
}

func TestApp(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"root path", "/", "/catalog/7/view", http.StatusOK},
		{"chained endpoint", "/catalog/7/view", `{"id":7}`, http.StatusOK},
		{"chain link rejects", "/catalog/seven/view", "bad id", http.StatusBadRequest},
		{"regex fallback", "/catalog/search/lamp", "search:lamp", http.StatusOK},
		{"incomplete chain", "/catalog/7", "Not Found", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.status, rec.Code)
			require.Contains(t, rec.Body.String(), tt.body)
			require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}

	t.Run("auto hook runs for catalog actions", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog/7/view", nil))
		require.Equal(t, "yes", rec.Header().Get("X-Catalog"))
	})
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	_, err := dispatch.New(dispatch.WithControllers(&RootController{}, &RootController{}))
	require.ErrorIs(t, err, dispatch.ErrDuplicateAction)
	require.True(t, dispatch.IsConfigError(err))

	require.Panics(t, func() {
		dispatch.MustNew(dispatch.WithControllers(&RootController{}, &RootController{}))
	})
}

func TestLoadControllers(t *testing.T) {
	t.Parallel()

	const yml = `
controllers:
  - name: Pages
    actions:
      - name: about
        attributes: ":Local:Args(0)"
        handler: pages.about
`
	controllers, err := dispatch.LoadControllers(strings.NewReader(yml), dispatch.Handlers{
		"pages.about": func(c *dispatch.Context) error {
			return c.String(http.StatusOK, "about")
		},
	})
	require.NoError(t, err)

	app := newApp(t, dispatch.WithControllers(controllers...))
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pages/about", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "about", rec.Body.String())
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "shop/items", dispatch.DeriveNamespace("ShopItemsController"))
	require.Equal(t, "a/b", dispatch.NormalizePath("//a//b/"))

	attrs, err := dispatch.ParseAttributes(dispatch.Method{Name: "view"}, "catalog", ":Local:Args(1)")
	require.NoError(t, err)
	require.Equal(t, "catalog/view", attrs.Value("Path"))
	require.Equal(t, "1", attrs.Value("Args"))
}
