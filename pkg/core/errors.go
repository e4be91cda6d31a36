package core

import "errors"

// ErrDegenerateGeometry marks a computation whose geometric inputs have no
// well-defined answer: normalizing a zero vector, a zero-length ray direction,
// a ray parallel to a plane or triangle, or a camera looking along world up.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// IsDegenerate reports whether err was caused by degenerate geometry
func IsDegenerate(err error) bool {
	return errors.Is(err, ErrDegenerateGeometry)
}
