package internal

import "strconv"

// Scalar is the set of types path and query values can be converted to.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// StashValue returns the stash value for key as T, or the zero value.
func StashValue[T any](c *Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Arg converts the i-th arg of the executing action. It returns the zero
// value and false when the arg is missing or cannot be parsed.
func Arg[T Scalar](c *Context, i int) (T, bool) {
	return indexed[T](c.Args(), i)
}

// Capture converts the i-th capture of the matched chain.
func Capture[T Scalar](c *Context, i int) (T, bool) {
	return indexed[T](c.Captures(), i)
}

func indexed[T Scalar](values []string, i int) (T, bool) {
	if i < 0 || i >= len(values) {
		var zero T
		return zero, false
	}
	return convertParam[T](values[i])
}

// Query returns a typed query parameter, or the zero value.
func Query[T Scalar](c *Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](c *Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
// Returns the converted value and true on success, or the zero value and false on failure.
func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
