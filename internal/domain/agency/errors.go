package agency

import "errors"

var (
	// ErrAgencyNotFound indicates the agency doesn't exist.
	ErrAgencyNotFound = errors.New("agency not found")
)
