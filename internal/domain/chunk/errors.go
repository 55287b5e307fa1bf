package chunk

import "errors"

// Sentinel kinds for chunking errors.
var (
	// ErrOversizedField reports a single field whose cost exceeds what any
	// chunk can hold net of header and footer. Such a field would silently
	// overflow the budget, so it is rejected instead.
	ErrOversizedField = errors.New("field exceeds chunk budget")
)
