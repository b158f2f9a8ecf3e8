package internal

import (
	"net/url"
	"regexp"
	"strings"
)

type regexRoute struct {
	re      *regexp.Regexp
	action  *Action
	pattern string
}

// RegexDispatch matches Regex and LocalRegex attributes against the
// remaining path. A pattern must span the whole path, so it is anchored at
// both ends whether or not it carries ^ and $. The path is seen in its
// percent-encoded form; submatches become captures and are decoded by the
// dispatcher. It runs after every normal strategy has failed.
type RegexDispatch struct {
	routes []regexRoute
}

// NewRegexDispatch creates the regex strategy.
func NewRegexDispatch() *RegexDispatch {
	return &RegexDispatch{}
}

func (d *RegexDispatch) Name() string { return "Regex" }

func (d *RegexDispatch) RegisterAction(a *Action) (bool, error) {
	patterns := a.attrs.Values(AttrRegex)
	if len(patterns) == 0 {
		return false, nil
	}
	for _, pattern := range patterns {
		re, err := regexp.Compile("^(?:" + pattern + ")$")
		if err != nil {
			return false, newConfigError(ErrInvalidAttribute, a.String()+": Regex("+pattern+"): "+err.Error())
		}
		d.routes = append(d.routes, regexRoute{re: re, action: a, pattern: pattern})
	}
	return true, nil
}

func (d *RegexDispatch) Setup(*Registry) error { return nil }

func (d *RegexDispatch) Match(path string, args []string) MatchResult {
	for _, route := range d.routes {
		m := route.re.FindStringSubmatch(path)
		if m == nil || !route.action.MatchArgs(len(args)) {
			continue
		}
		return MatchResult{
			Type:     ExactMatch,
			Action:   route.action,
			Match:    path,
			Captures: m[1:],
			Args:     args,
		}
	}
	return MatchResult{}
}

// URIForAction substitutes percent-encoded captures into the top-level
// groups of the first pattern that can be reversed. Patterns that still
// contain regex syntax after substitution cannot be turned into a path.
func (d *RegexDispatch) URIForAction(a *Action, captures []string) string {
	for _, route := range d.routes {
		if route.action != a.Endpoint() {
			continue
		}
		if path, ok := reverseRegex(route.pattern, captures); ok {
			return "/" + strings.TrimPrefix(path, "/")
		}
	}
	return ""
}

func reverseRegex(pattern string, captures []string) (string, bool) {
	pattern = strings.TrimPrefix(pattern, "^")
	pattern = strings.TrimSuffix(pattern, "$")

	var b strings.Builder
	depth, next := 0, 0
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			i++
			if depth > 0 {
				continue
			}
			// \d, \w and friends are classes, not literals
			if esc := pattern[i]; esc >= 'a' && esc <= 'z' || esc >= 'A' && esc <= 'Z' || esc >= '0' && esc <= '9' {
				return "", false
			}
			b.WriteByte(pattern[i])
		case ch == '(':
			if depth == 0 {
				if next >= len(captures) {
					return "", false
				}
				b.WriteString(url.PathEscape(captures[next]))
				next++
			}
			depth++
		case ch == ')':
			depth--
		case depth == 0:
			if strings.IndexByte(".*+?[]{}|", ch) >= 0 {
				return "", false
			}
			b.WriteByte(ch)
		}
	}
	if next != len(captures) || depth != 0 {
		return "", false
	}
	return b.String(), true
}

func (d *RegexDispatch) InUse() bool { return len(d.routes) > 0 }

func (d *RegexDispatch) IsLowPrecedence() bool { return true }

func (d *RegexDispatch) List() string {
	rows := make([][]string, 0, len(d.routes))
	for _, route := range d.routes {
		rows = append(rows, []string{route.pattern, route.action.String()})
	}
	return renderTable("Loaded Regex actions:", []string{"Regex", "Private"}, rows)
}
