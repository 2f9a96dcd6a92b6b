// Package util holds the pointer helpers shared by the optional-field
// types: overrides and TOML catalog entries use nil for "absent".
package util

// Ptr returns a pointer to a copy of v
func Ptr[T any](v T) *T {
	return &v
}

// Clone returns a pointer to a copy of *p, or nil
func Clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Assign sets *dst to *src when src is present
func Assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// AssignPtr replaces *dst with a copy of src when src is present
func AssignPtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = Clone(src)
	}
}
