package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

// NonEmpty reports whether s points at a non-empty string. Token fields of
// ITV responses are optional and may also arrive as "".
func NonEmpty(s *string) bool {
	return s != nil && *s != ""
}
