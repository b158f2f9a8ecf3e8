// Package dispatch maps request paths to controller actions declared with
// attribute strings, and runs them through a Begin, Auto, action, End
// lifecycle.
//
// Controllers declare actions on a [Router]. Each action carries an attribute
// string that decides how it is reached:
//
//	type Catalog struct{}
//
//	func (Catalog) Routes(r dispatch.Router) {
//	    r.Begin(loadSession)
//	    r.Auto(requireLogin)
//	    r.Action("item", ":Chained(/):PathPart(catalog):CaptureArgs(1)", loadItem)
//	    r.Action("view", ":Chained(item):PathPart(view):Args(0)", viewItem)
//	    r.Action("search", ":Local:Args", search)
//	    r.Action("sku", ":Regex(^sku/(\\d+)$)", bySKU)
//	}
//
// # Matching
//
// Three strategies are built in. Literal Path matches ":Path", ":Local" and
// ":Global" actions. Chained builds multi-segment URLs from actions linked
// with ":Chained", each link consuming its own captures. Regex matches the
// whole path and has the lowest precedence.
//
// Trailing path segments that no strategy matches are peeled off and passed
// to the action as args:
//
//	func search(c *dispatch.Context) error {
//	    terms := c.Args()
//	    page := dispatch.QueryDefault(c, "page", 1)
//	    return c.JSON(http.StatusOK, find(terms, page))
//	}
//
// # Lifecycle
//
// For the matched action the dispatcher runs the nearest Begin, every Auto
// from the root namespace down, the action itself and finally the nearest
// End. A failing Begin or Auto skips the rest except End. Return
// [ErrAbort] to fail without recording an error.
//
// # Roles
//
// ":Does(ACL)" and ":Does(REST)" wrap an action. ACL checks the current
// user's roles and detaches to another action when access is denied. REST
// forwards to name_METHOD after the action body.
//
// # Running
//
// [New] sets everything up and fails on configuration errors such as
// duplicate paths or broken chains:
//
//	app, err := dispatch.New(
//	    dispatch.WithLogger("shop"),
//	    dispatch.WithControllers(Catalog{}),
//	    dispatch.WithHealthChecks(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// The application handles SIGINT/SIGTERM for graceful shutdown.
package dispatch
