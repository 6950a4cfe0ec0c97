package utils

import "strings"

func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// FirstNonEmpty returns the first value that is not blank after trimming
func FirstNonEmpty(values ...string) (string, bool) {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s, true
		}
	}
	return "", false
}

// OptionalString returns nil for blank strings so JSON omits them
func OptionalString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
