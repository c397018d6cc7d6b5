package domain

import "errors"

var (
	// ErrNotConfigured indicates the store credentials are missing.
	// Surfaced at request time; never silently defaulted.
	ErrNotConfigured = errors.New("store not configured")

	// ErrStoreQuery indicates a read-path store failure. The page is
	// not partially returned.
	ErrStoreQuery = errors.New("store query failed")

	// ErrNotFound indicates the referenced token does not exist.
	ErrNotFound = errors.New("token not found")
)
