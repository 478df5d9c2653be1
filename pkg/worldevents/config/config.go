package config

import (
	"maps"
	"slices"
	"time"
)

// Config is a decoded settings document. Lookups never fail: a missing key
// or a value of the wrong shape yields the caller's default.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map behaves as an empty document.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// Has reports whether key is present, whatever its value.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Keys returns the top-level keys in sorted order.
func (c Config) Keys() []string {
	return slices.Sorted(maps.Keys(c.data))
}

// Duration reads a ParseDuration string, a number of seconds, or a
// time.Duration.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	switch v := c.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case time.Duration:
		return v
	}
	return def
}

// Int reads an integer. JSON numbers arrive as float64 and are accepted
// when whole.
func (c Config) Int(key string, def int) int {
	if n, ok := asInt(c.data[key]); ok {
		return n
	}
	return def
}

// Uint64 reads a non-negative integer, the form seeds are written in.
func (c Config) Uint64(key string, def uint64) uint64 {
	switch v := c.data[key].(type) {
	case uint64:
		return v
	case int, int64, float64:
		if n, ok := asInt(v); ok && n >= 0 {
			return uint64(n)
		}
	}
	return def
}

// IntMap reads a mapping of names to integers, such as per-type admission
// caps. Non-integer entries are dropped; a missing key or non-mapping
// value gives nil.
func (c Config) IntMap(key string) map[string]int {
	return convertMap(c.mapAt(key), asInt)
}

// FloatMap reads a mapping of names to numbers, such as per-type
// generation probabilities.
func (c Config) FloatMap(key string) map[string]float64 {
	return convertMap(c.mapAt(key), asFloat)
}

func (c Config) mapAt(key string) map[string]any {
	switch v := c.data[key].(type) {
	case map[string]any:
		return v
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	}
	return nil
}

func convertMap[T any](m map[string]any, conv func(any) (T, bool)) map[string]T {
	if m == nil {
		return nil
	}
	out := make(map[string]T, len(m))
	for k, v := range m {
		if t, ok := conv(v); ok {
			out[k] = t
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
