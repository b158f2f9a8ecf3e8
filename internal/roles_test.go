package internal_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func aclControllers(log *[]string) internal.Controller {
	return ctrl("Admin", "admin", func(r internal.Router) {
		r.Action("denied", "", func(c *internal.Context) error {
			*log = append(*log, "denied")
			return c.String(http.StatusForbidden, "denied")
		}, internal.WithPrivate())
		r.Action("panel", ":Local:Does(ACL):RequiresRole(admin):AllowedRole(editor):AllowedRole(owner):ACLDetachTo(denied)",
			record(log, "panel"))
		r.Action("reports", ":Local:Does(ACL):AllowedRole(viewer):ACLDetachTo(/admin/denied)",
			record(log, "reports"))
	})
}

func TestACLRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		roles  string
		want   []string
		ok     bool
	}{
		{"required and allowed", "/admin/panel", "admin,editor", []string{"panel"}, true},
		{"required only", "/admin/panel", "admin", []string{"denied"}, false},
		{"allowed only", "/admin/panel", "owner", []string{"denied"}, false},
		{"no roles", "/admin/panel", "", []string{"denied"}, false},
		{"allowed role by private path", "/admin/reports", "viewer", []string{"reports"}, true},
		{"denied by private path", "/admin/reports", "admin", []string{"denied"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var log []string
			d := internal.NewDispatcher(internal.WithUserRoles(
				internal.NewExtractor(internal.FromHeader("X-Roles")).Roles,
			))
			require.NoError(t, d.Setup(aclControllers(&log)))

			c, rec := newContext(d, http.MethodGet, tt.target)
			c.Request().Header.Set("X-Roles", tt.roles)
			require.True(t, d.PrepareAction(c))
			require.Equal(t, tt.ok, d.Dispatch(c))
			require.Equal(t, tt.want, log)
			require.False(t, c.HasErrors())
			if !tt.ok {
				require.Equal(t, http.StatusForbidden, rec.Code)
			}
		})
	}
}

func TestACLRoleWithoutUserRoles(t *testing.T) {
	t.Parallel()

	var log []string
	d := setup(t, aclControllers(&log))
	c, ok := resolve(t, d, "/admin/reports")
	require.True(t, ok)
	require.False(t, d.Dispatch(c))
	require.Equal(t, []string{"denied"}, log)
}

func TestACLRoleCanVisit(t *testing.T) {
	t.Parallel()

	d := setup(t, aclControllers(new([]string)))
	panel := d.GetAction("panel", "admin")
	require.NotNil(t, panel)

	r := internal.NewACLRole().(*internal.ACLRole)
	require.NoError(t, r.Init(panel))
	require.True(t, r.CanVisit([]string{"admin", "owner"}))
	require.False(t, r.CanVisit([]string{"editor"}))
	require.False(t, r.CanVisit(nil))
}

func TestACLRoleConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs string
		want  string
	}{
		{"no roles", ":Local:Does(ACL):ACLDetachTo(denied)", "RequiresRole"},
		{"no detach target", ":Local:Does(ACL):RequiresRole(admin)", "ACLDetachTo"},
		{"unknown detach target", ":Local:Does(ACL):RequiresRole(admin):ACLDetachTo(nowhere)", "nowhere"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := internal.NewDispatcher()
			err := d.Setup(ctrl("Admin", "admin", func(r internal.Router) {
				r.Action("panel", tt.attrs, nil)
			}))
			require.ErrorIs(t, err, internal.ErrRoleConfig)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func restController(log *[]string) internal.Controller {
	return ctrl("Items", "items", func(r internal.Router) {
		r.Action("items", ":Path:Args(0):Does(REST)", record(log, "items"))
		r.Action("items_GET", "", record(log, "get"), internal.WithPrivate())
		r.Action("items_POST", "", record(log, "post"), internal.WithPrivate())
		r.Action("items_DELETE", "", func(c *internal.Context) error {
			*log = append(*log, "delete")
			return internal.ErrAbort
		}, internal.WithPrivate())
	})
}

func TestRESTRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   []string
		status int
		ok     bool
	}{
		{http.MethodGet, []string{"items", "get"}, http.StatusOK, true},
		{http.MethodHead, []string{"items", "get"}, http.StatusOK, true},
		{http.MethodPost, []string{"items", "post"}, http.StatusOK, true},
		{http.MethodDelete, []string{"items", "delete"}, http.StatusOK, false},
		{http.MethodOptions, []string{"items"}, http.StatusOK, true},
		{http.MethodPut, []string{"items"}, http.StatusMethodNotAllowed, true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			var log []string
			d := setup(t, restController(&log))

			c, rec := newContext(d, tt.method, "/items")
			require.True(t, d.PrepareAction(c))
			require.Equal(t, tt.ok, d.Dispatch(c))
			require.Equal(t, tt.want, log)
			require.Equal(t, tt.status, rec.Code)

			if tt.method == http.MethodOptions || tt.method == http.MethodPut {
				require.Equal(t, "GET, HEAD, POST, DELETE, OPTIONS", rec.Header().Get("Allow"))
			}
			if tt.method == http.MethodPut {
				require.True(t, strings.HasPrefix(rec.Body.String(), "Method PUT not implemented for /items"))
			}
		})
	}
}

func TestCustomRole(t *testing.T) {
	t.Parallel()

	var log []string
	d := internal.NewDispatcher(internal.WithRoleFactory("Trace", func() internal.Role {
		return &traceRole{log: &log}
	}))
	require.NoError(t, d.Setup(ctrl("Root", "", func(r internal.Router) {
		r.Action("index", ":Path:Does(Trace)", record(&log, "index"))
	})))

	c, ok := resolve(t, d, "/")
	require.True(t, ok)
	require.True(t, d.Dispatch(c))
	require.Equal(t, []string{"before /index", "index", "after /index"}, log)
}

type traceRole struct {
	log *[]string
}

func (r *traceRole) Init(*internal.Action) error { return nil }

func (r *traceRole) AroundExecute(c *internal.Context, a *internal.Action, next internal.ActionFunc) error {
	*r.log = append(*r.log, "before "+a.String())
	err := next(c)
	*r.log = append(*r.log, "after "+a.String())
	return err
}
