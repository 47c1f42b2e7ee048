package utils

import (
	"github.com/aarondl/null/v8"
)

func SafeDeref[T any](ptr *T) T {
	if ptr == nil {
		var zero T
		return zero
	}
	return *ptr
}

func ToPtr[T any](v T) *T {
	return &v
}

// NullStringFromPtr: nil и пустая строка превращаются в NULL.
func NullStringFromPtr(s *string) null.String {
	if s == nil || *s == "" {
		return null.String{}
	}
	return null.StringFrom(*s)
}

func NullInt64Ptr(n null.Int64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
