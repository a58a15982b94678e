package sampler

import "errors"

var (
	// ErrInvalidImage indicates the source image is missing, unreadable,
	// or too small to survive preprocessing. Raised at construction; no
	// partial sequence is ever returned.
	ErrInvalidImage = errors.New("invalid source image")

	// ErrInvalidConfig indicates the configuration violates a numeric
	// precondition, such as a non-integer downscale ratio or a crop size
	// larger than the preprocessed image.
	ErrInvalidConfig = errors.New("invalid sampler configuration")

	// ErrIndexOutOfRange indicates an access index at or beyond the
	// sequence length.
	ErrIndexOutOfRange = errors.New("sample index out of range")
)
