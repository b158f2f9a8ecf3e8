package internal_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func TestLifecycle(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	type hooks struct {
		begin, auto, action error
	}

	tests := []struct {
		name    string
		hooks   hooks
		want    []string
		ok      bool
		errored bool
	}{
		{
			name: "all succeed",
			want: []string{"begin", "root-auto", "auto", "action", "end"},
			ok:   true,
		},
		{
			name:    "begin fails",
			hooks:   hooks{begin: errBoom},
			want:    []string{"begin", "end"},
			errored: true,
		},
		{
			name:    "auto fails",
			hooks:   hooks{auto: errBoom},
			want:    []string{"begin", "root-auto", "auto", "end"},
			errored: true,
		},
		{
			name:  "auto aborts without an error",
			hooks: hooks{auto: internal.ErrAbort},
			want:  []string{"begin", "root-auto", "auto", "end"},
		},
		{
			name:    "action fails",
			hooks:   hooks{action: errBoom},
			want:    []string{"begin", "root-auto", "auto", "action", "end"},
			errored: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var log []string
			step := func(name string, err error) internal.ActionFunc {
				return func(*internal.Context) error {
					log = append(log, name)
					return err
				}
			}

			d := setup(t,
				ctrl("Root", "", func(r internal.Router) {
					r.Auto(step("root-auto", nil))
					r.End(step("root-end", nil))
				}),
				ctrl("Shop", "shop", func(r internal.Router) {
					r.Begin(step("begin", tt.hooks.begin))
					r.Auto(step("auto", tt.hooks.auto))
					r.End(step("end", errBoom))
					r.Action("index", ":Path", step("action", tt.hooks.action))
				}),
			)

			c, ok := resolve(t, d, "/shop")
			require.True(t, ok)
			require.Equal(t, tt.ok, d.Dispatch(c))
			require.Equal(t, tt.ok, c.State())
			require.Equal(t, tt.want, log)
			if tt.errored {
				require.ErrorIs(t, c.Errors()[0], errBoom)
			}
		})
	}
}

func TestLifecycleEndErrorIsRecorded(t *testing.T) {
	t.Parallel()

	errEnd := errors.New("end failed")
	d := setup(t, ctrl("Root", "", func(r internal.Router) {
		r.End(func(*internal.Context) error { return errEnd })
		r.Action("index", ":Path", nil)
	}))

	c, ok := resolve(t, d, "/")
	require.True(t, ok)
	require.True(t, d.Dispatch(c))
	require.Equal(t, []error{errEnd}, c.Errors())
}

func TestDispatchWithoutAction(t *testing.T) {
	t.Parallel()

	d := setup(t, ctrl("Root", "", func(r internal.Router) {
		r.Action("about", ":Local:Args(0)", nil)
	}))

	c, ok := resolve(t, d, "/missing")
	require.False(t, ok)
	require.False(t, d.Dispatch(c))
	require.ErrorIs(t, c.Errors()[0], internal.ErrNoAction)
}
