package store

import "errors"

// Sentinel kinds for verified-user store errors.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnavailable indicates the backing database cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)
