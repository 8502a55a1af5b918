package storage

import "errors"

// Storage errors.
var (
	// ErrInvalidInput is returned when a request names an invalid table or
	// column, or carries no rows.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFormat is returned for insert formats a sink cannot write.
	ErrUnsupportedFormat = errors.New("unsupported insert format")
)
