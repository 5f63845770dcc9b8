// Package value holds the generic, untyped document tree shared by module
// descriptors and module configuration files.
//
// A Map is what every structured document decodes into. Its leaves are
// string, int, float64, bool or nil, plus uint64 for integers that do not fit
// in an int. Inner nodes are []any and Map. The typed accessors never fail: a
// missing key or a value of the wrong shape yields the caller's default.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Map is a generic key/value document.
type Map map[string]any

// Has reports whether key is present, even if its value is nil.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the string stored at key, or def when the key is missing or
// not a string.
func (m Map) String(key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// Bool returns the boolean stored at key using ToBool, or def when the key is
// missing.
func (m Map) Bool(key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	return ToBool(v)
}

// Int returns the integer stored at key. Floats with no fractional part and
// numeric strings are accepted; anything else yields def.
func (m Map) Int(key string, def int) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		if v <= math.MaxInt {
			return int(v)
		}
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Strings returns the list of strings stored at key. A single string is
// treated as a one-element list; non-string elements are skipped.
func (m Map) Strings(key string) []string {
	switch v := m[key].(type) {
	case string:
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns the nested map stored at key, or nil.
func (m Map) Map(key string) Map {
	switch v := m[key].(type) {
	case Map:
		return v
	case map[string]any:
		return Map(v)
	}
	return nil
}

// Keys returns the map's keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneAny(v)
	}
	return out
}

func cloneAny(v any) any {
	switch t := v.(type) {
	case Map:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneAny(item)
		}
		return out
	default:
		return v
	}
}

// ToBool converts a generic leaf to a boolean. Booleans are returned as is,
// non-zero numbers are true and the strings "true", "yes", "on" and "1" are
// true regardless of case. Everything else is false.
func ToBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1":
			return true
		}
	}
	return false
}

// Normalize converts a decoded document into the Map tree. Nested
// map[string]any and map[any]any values become Map; non-string keys are
// formatted with fmt. Slices are normalized element by element.
func Normalize(v any) any {
	switch t := v.(type) {
	case Map:
		out := make(Map, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(Map, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case map[any]any:
		out := make(Map, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case int64:
		return int(t)
	case uint64:
		if t <= math.MaxInt {
			return int(t)
		}
		return t
	default:
		return v
	}
}
