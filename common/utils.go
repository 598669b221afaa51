package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Deref returns the value behind p, or def when p is nil. This expresses the
// "override only when present" semantics of optional pointer fields in a
// deserialized document.
//
// Parameters:
//   - p: pointer to dereference, may be nil
//   - def: the value to return when p is nil
//
// Returns:
//   - T: *p when p is non-nil, otherwise def
func Deref[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
