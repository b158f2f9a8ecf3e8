package internal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/dispatch/pkg/logger"
)

// ExtractorSource extracts a value from the request context.
// Returns the value and true if found, or ("", false) if not present.
type ExtractorSource = func(*Context) (string, bool)

// Extractor tries multiple sources in order and returns the first match.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract iterates sources in order and returns the first non-empty value.
// Returns ("", false) if all sources miss.
func (e Extractor) Extract(c *Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Roles returns a user-roles function for the ACL role. The extracted value
// is split on commas and blanks are dropped.
//
// Example:
//
//	dispatch.WithUserRoles(dispatch.NewExtractor(
//	    dispatch.FromStash(rolesKey{}),
//	    dispatch.FromHeader("X-User-Roles"),
//	).Roles)
func (e Extractor) Roles(c *Context) []string {
	v, ok := e.Extract(c)
	if !ok {
		return nil
	}
	var roles []string
	for _, r := range strings.Split(v, ",") {
		if r = strings.TrimSpace(r); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}

// FromHeader returns a source that reads from a request header.
func FromHeader(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		v := c.Header(name)
		return v, v != ""
	}
}

// FromQuery returns a source that reads from a query parameter.
func FromQuery(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		v := c.Query(name)
		return v, v != ""
	}
}

// FromCookie returns a source that reads from a plain cookie.
func FromCookie(name string) ExtractorSource {
	return func(c *Context) (string, bool) {
		ck, err := c.Request().Cookie(name)
		if err != nil || ck.Value == "" {
			return "", false
		}
		return ck.Value, true
	}
}

// FromStash returns a source that reads a stash value set by an earlier
// action or middleware. Non-string values are formatted with fmt.Sprint;
// string slices are joined with commas.
func FromStash(key any) ExtractorSource {
	return func(c *Context) (string, bool) {
		switch v := c.Get(key).(type) {
		case nil:
			return "", false
		case string:
			return v, v != ""
		case []string:
			return strings.Join(v, ","), len(v) > 0
		default:
			s := fmt.Sprint(v)
			return s, s != ""
		}
	}
}

// FromBearerToken returns a source that reads a Bearer token from the Authorization header.
// Uses case-insensitive comparison on the "Bearer " prefix.
func FromBearerToken() ExtractorSource {
	return func(c *Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		token := auth[7:]
		return token, token != ""
	}
}

// ActionExtractor returns a logger.ContextExtractor adding the matched
// action's private path to records logged with a *Context.
func ActionExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		c, ok := ctx.(*Context)
		if !ok || c.action == nil {
			return slog.Attr{}, false
		}
		return slog.String("action", c.action.String()), true
	}
}
