// internal/apperr/apperr.go
package apperr

import "errors"

// Sentinel errors for the storage and service layers. Callers wrap them with
// fmt.Errorf("...: %w", ...) and handlers map them to HTTP status codes with
// errors.Is.
var (
	// ErrConflict is returned when creating a record whose id already exists.
	ErrConflict = errors.New("already exists")

	// ErrNotFound is returned when a record or image does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for rejected payloads: bad content type,
	// empty upload batches, missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooLarge is returned when an image payload exceeds the configured cap.
	ErrTooLarge = errors.New("payload too large")

	// ErrTransient is returned when the storage engine stayed locked past the
	// bounded retry budget. The caller may retry the whole operation.
	ErrTransient = errors.New("storage busy")
)
