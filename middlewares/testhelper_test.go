package middlewares_test

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/internal"
)

// dispatcher has no controllers; contexts built from it match nothing,
// which is all middleware needs.
var dispatcher = func() *internal.Dispatcher {
	d := internal.NewDispatcher()
	if err := d.Setup(); err != nil {
		panic(err)
	}
	return d
}()

func newTestContext(w http.ResponseWriter, r *http.Request) *internal.Context {
	return dispatcher.NewContext(w, r)
}
