package model

import (
	"fmt"
	"strings"
)

func parseName[T ~int](names []string, s string) (T, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == s {
			return T(i), true
		}
	}
	return T(-1), false
}

func unmarshalName[T ~int](names []string, what string, b []byte, dst *T) error {
	v, ok := parseName[T](names, string(b))
	if !ok {
		return fmt.Errorf("unknown %s %q", what, string(b))
	}
	*dst = v
	return nil
}
