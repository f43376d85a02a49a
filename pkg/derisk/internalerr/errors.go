package internalerr

import "errors"

// Sentinel errors for the I/O collaborators; matching itself never fails.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrMissingColumn    = errors.New("missing column")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInvalidConfig    = errors.New("invalid configuration")
)
