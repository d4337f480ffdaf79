package application

import "errors"

var (
	// ErrNotFound reports an unknown update job.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a reused idempotency key.
	ErrConflict   = errors.New("conflict")
	ErrBadRequest = errors.New("bad request")
)
