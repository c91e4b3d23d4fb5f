package verificaciones

import "errors"

var (
	// ErrValidation covers bad verification input: missing comment, unknown
	// payment method, missing or oversized evidence.
	ErrValidation = errors.New("verificaciones: invalid input")

	// ErrNotFound means no verification with that id owned by the caller.
	ErrNotFound = errors.New("verificaciones: not found")

	// ErrUnsupportedMedia means the evidence file is not an image.
	ErrUnsupportedMedia = errors.New("verificaciones: unsupported media type")
)
