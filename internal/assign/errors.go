package assign

import "errors"

var (
	// ErrEmptyAgenda means no assignable roles remain once skipped and theme rows are removed
	ErrEmptyAgenda = errors.New("no valid agenda found for this date")

	// ErrMalformedEntry means an agenda entry has no role label
	ErrMalformedEntry = errors.New("agenda entry has no role")
)
