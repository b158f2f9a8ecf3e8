package internal

import (
	"strconv"
	"strings"
)

// Attribute names understood by the dispatcher.
const (
	AttrPath            = "Path"
	AttrGlobal          = "Global"
	AttrLocal           = "Local"
	AttrArgs            = "Args"
	AttrCaptureArgs     = "CaptureArgs"
	AttrAutoArgs        = "AutoArgs"
	AttrAutoCaptureArgs = "AutoCaptureArgs"
	AttrChained         = "Chained"
	AttrPathPart        = "PathPart"
	AttrRegex           = "Regex"
	AttrLocalRegex      = "LocalRegex"
	AttrPrivate         = "Private"
	AttrDoes            = "Does"
)

// Attributes is an ordered multimap of attribute name to values.
// Values of a repeated key keep their declaration order.
type Attributes struct {
	values map[string][]string
	keys   []string
}

// Add appends a value to key.
func (a *Attributes) Add(key, value string) {
	if a.values == nil {
		a.values = make(map[string][]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = append(a.values[key], value)
}

// Set replaces every value of key with value.
func (a *Attributes) Set(key, value string) {
	a.Delete(key)
	a.Add(key, value)
}

// Delete removes key and all of its values.
func (a *Attributes) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}
	delete(a.values, key)
	for i, k := range a.keys {
		if k == key {
			a.keys = append(a.keys[:i:i], a.keys[i+1:]...)
			break
		}
	}
}

// Has reports whether key was declared, with or without a value.
func (a *Attributes) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Lookup returns the first value of key.
func (a *Attributes) Lookup(key string) (string, bool) {
	vals, ok := a.values[key]
	if !ok || len(vals) == 0 {
		return "", ok
	}
	return vals[0], true
}

// Value returns the first value of key or an empty string.
func (a *Attributes) Value(key string) string {
	v, _ := a.Lookup(key)
	return v
}

// Values returns a copy of every value of key in declaration order.
func (a *Attributes) Values(key string) []string {
	vals := a.values[key]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Keys returns the declared keys in first-seen order.
func (a *Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of distinct keys.
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Param describes one declared parameter of an action method, after the
// implicit context parameter.
type Param int

const (
	ParamString Param = iota + 1
	ParamStringList
	ParamOther
)

// Method describes the handler an attribute string is attached to.
type Method struct {
	Name    string
	Params  []Param
	Private bool
}

type attrPair struct {
	key   string
	value string
}

// ParseAttributes turns an annotation string like ":Path(foo):Args(2)" into
// Attributes, qualifying paths and chain references against namespace.
//
// Malformed input never fails: an unterminated value swallows the rest of
// the string. The only error is declaring both AutoArgs and AutoCaptureArgs.
func ParseAttributes(m Method, namespace, raw string) (Attributes, error) {
	var attrs Attributes

	for _, p := range splitAttributes(raw) {
		key, value := p.key, p.value
		switch key {
		case AttrGlobal:
			key, value = AttrPath, qualifyPath(namespace, "/"+m.Name)
		case AttrLocal:
			key, value = AttrPath, qualifyPath(namespace, m.Name)
		case AttrPath:
			value = qualifyPath(namespace, value)
		case AttrArgs:
			if value != "" {
				value = digitsOnly(value)
			}
		case AttrCaptureArgs:
			value = digitsOnly(value)
		case AttrChained:
			value = qualifyChained(namespace, value)
		case AttrLocalRegex:
			key, value = AttrRegex, qualifyRegex(namespace, value)
		}
		attrs.Add(key, value)
	}

	if attrs.Has(AttrAutoArgs) && attrs.Has(AttrAutoCaptureArgs) {
		return attrs, newConfigError(ErrAutoArgsConflict, m.Name)
	}

	if !attrs.Has(AttrArgs) && !attrs.Has(AttrCaptureArgs) {
		target := ""
		switch {
		case attrs.Has(AttrAutoArgs):
			attrs.Delete(AttrAutoArgs)
			target = AttrArgs
		case attrs.Has(AttrAutoCaptureArgs):
			attrs.Delete(AttrAutoCaptureArgs)
			target = AttrCaptureArgs
		}
		// A single string-list parameter takes whatever is left, so no fixed count.
		if target != "" && !(len(m.Params) == 1 && m.Params[0] == ParamStringList) {
			n := 0
			for _, p := range m.Params {
				if p == ParamString {
					n++
				}
			}
			attrs.Set(target, strconv.Itoa(n))
		}
	}

	if m.Private && !attrs.Has(AttrPrivate) {
		attrs.Add(AttrPrivate, "")
	}

	return attrs, nil
}

// splitAttributes tokenizes ":Key(value):Key" into pairs. A value only ends
// at a ')' followed by ':' or the end of input, so values may contain
// parentheses and quotes.
func splitAttributes(raw string) []attrPair {
	var pairs []attrPair
	size := len(raw)
	pos := 0
	for pos < size {
		if raw[pos] != ':' {
			pos++
			continue
		}
		pos++

		keyStart := pos
		for pos < size && raw[pos] != '(' && raw[pos] != ':' {
			pos++
		}
		key := strings.TrimSpace(raw[keyStart:pos])

		var value string
		if pos < size && raw[pos] == '(' {
			pos++
			valueStart := pos
			closed := false
			for pos < size {
				if raw[pos] == ')' && (pos+1 == size || raw[pos+1] == ':') {
					value = raw[valueStart:pos]
					pos++
					closed = true
					break
				}
				pos++
			}
			if !closed {
				value = raw[valueStart:]
			}
			value = unquote(value)
		}

		if key != "" {
			pairs = append(pairs, attrPair{key: key, value: value})
		}
	}
	return pairs
}

func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	if (v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"') {
		return v[1 : len(v)-1]
	}
	return v
}

func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// qualifyPath resolves a Path value against the namespace.
// Absolute values are kept, an empty value means the namespace root.
func qualifyPath(namespace, value string) string {
	switch {
	case strings.HasPrefix(value, "/"):
		return value
	case value == "":
		return namespace
	case namespace == "":
		return value
	}
	return namespace + "/" + value
}

// qualifyChained normalizes a Chained reference to an absolute private path.
func qualifyChained(namespace, value string) string {
	switch {
	case value == "":
		return "/"
	case value == ".":
		return "/" + namespace
	case strings.HasPrefix(value, "/"):
		return value
	case namespace == "":
		return "/" + value
	}
	return "/" + namespace + "/" + value
}

func qualifyRegex(namespace, value string) string {
	if namespace == "" {
		return value
	}
	return "^" + namespace + "/" + strings.TrimPrefix(value, "^")
}
