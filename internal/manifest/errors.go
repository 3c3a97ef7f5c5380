package manifest

import "errors"

// Mutation errors. Every mutator validates fully before writing, so a
// returned error guarantees the registry is unchanged.
var (
	ErrComponentNotFound  = errors.New("component not found")
	ErrDepthExceeded      = errors.New("maximum nesting depth exceeded")
	ErrCircularReference  = errors.New("circular reference")
	ErrPropertyNotAllowed = errors.New("property kind not allowed at schema level")
)
