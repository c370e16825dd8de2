// Package normalize maps heterogeneous wire payloads (mixed snake_case and
// camelCase keys, optional fields, loosely typed numbers) into the canonical
// record shapes. Each field resolves through a fixed fallback table: the
// camelCase key wins, then the snake_case key, then legacy short keys.
// Missing optional fields get documented defaults; only required timestamps
// fall back to the current time. Normalization never fails and is
// idempotent over the canonical map form.
package normalize

import (
	"time"
)

// pick returns the first non-nil value among keys, in priority order.
func pick(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float32:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func str(raw map[string]any, keys ...string) string {
	if v, ok := pick(raw, keys...); ok {
		if s, ok := asString(v); ok {
			return s
		}
	}
	return ""
}

func i64(raw map[string]any, keys ...string) int64 {
	if v, ok := pick(raw, keys...); ok {
		if n, ok := asInt64(v); ok {
			return n
		}
	}
	return 0
}

func intAt(raw map[string]any, keys ...string) int {
	return int(i64(raw, keys...))
}

func boolAt(raw map[string]any, keys ...string) bool {
	if v, ok := pick(raw, keys...); ok {
		if b, ok := asBool(v); ok {
			return b
		}
	}
	return false
}

func boolDefault(raw map[string]any, def bool, keys ...string) bool {
	if v, ok := pick(raw, keys...); ok {
		if b, ok := asBool(v); ok {
			return b
		}
	}
	return def
}

// ts resolves a required timestamp; an absent or unusable value falls back
// to the current time.
func ts(raw map[string]any, keys ...string) int64 {
	if v := i64(raw, keys...); v != 0 {
		return v
	}
	return time.Now().UnixMilli()
}

// strs resolves a string sequence. A bare string becomes a one-element
// sequence (legacy single-url payloads).
func strs(raw map[string]any, keys ...string) []string {
	out := []string{}
	v, ok := pick(raw, keys...)
	if !ok {
		return out
	}
	switch seq := v.(type) {
	case []string:
		out = append(out, seq...)
	case []any:
		for _, item := range seq {
			if s, ok := asString(item); ok {
				out = append(out, s)
			}
		}
	case string:
		if seq != "" {
			out = append(out, seq)
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	}
	return nil, false
}

func mapAt(raw map[string]any, keys ...string) (map[string]any, bool) {
	if v, ok := pick(raw, keys...); ok {
		return asMap(v)
	}
	return nil, false
}

func maps(raw map[string]any, keys ...string) []map[string]any {
	out := []map[string]any{}
	v, ok := pick(raw, keys...)
	if !ok {
		return out
	}
	switch seq := v.(type) {
	case []map[string]any:
		out = append(out, seq...)
	case []any:
		for _, item := range seq {
			if m, ok := asMap(item); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func has(raw map[string]any, keys ...string) bool {
	_, ok := pick(raw, keys...)
	return ok
}
