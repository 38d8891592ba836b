package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or did not match the filter.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the attempted write would violate a uniqueness constraint.
	ErrConflict = errors.New("record conflict")
	// ErrNotAcknowledged indicates the store accepted a write without reporting it applied.
	ErrNotAcknowledged = errors.New("write not acknowledged")
)
