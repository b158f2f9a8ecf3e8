package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

// testController is a Controller built from a routes function.
type testController struct {
	routes    func(r internal.Router)
	name      string
	namespace string
}

func (c *testController) Name() string             { return c.name }
func (c *testController) Namespace() string        { return c.namespace }
func (c *testController) Routes(r internal.Router) { c.routes(r) }

func ctrl(name, namespace string, routes func(r internal.Router)) *testController {
	return &testController{name: name, namespace: namespace, routes: routes}
}

// setup builds a ready dispatcher or fails the test.
func setup(t *testing.T, controllers ...internal.Controller) *internal.Dispatcher {
	t.Helper()
	d := internal.NewDispatcher()
	require.NoError(t, d.Setup(controllers...))
	return d
}

// newContext creates a request context for method and target.
func newContext(d *internal.Dispatcher, method, target string) (*internal.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	return d.NewContext(rec, req), rec
}

// resolve prepares a GET context for target.
func resolve(t *testing.T, d *internal.Dispatcher, target string) (*internal.Context, bool) {
	t.Helper()
	c, _ := newContext(d, http.MethodGet, target)
	return c, d.PrepareAction(c)
}

// record returns an action that appends name to log.
func record(log *[]string, name string) internal.ActionFunc {
	return func(*internal.Context) error {
		*log = append(*log, name)
		return nil
	}
}
