package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	// ErrNoData marks an exhausted fetch or an upstream "no data" payload.
	// Callers treat it identically to an empty result; it never escapes
	// the gateway surface.
	ErrNoData = errors.New("no data")
)
