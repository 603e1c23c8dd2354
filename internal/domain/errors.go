package domain

import "errors"

// Sentinel errors for the failure classes the server distinguishes. Callers
// match with errors.Is; everything else propagates untyped.
var (
	// ErrConfiguration means required startup configuration is missing or
	// invalid. Fatal, nothing is served.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication means the brokerage rejected the credential pair at
	// login. Fatal at startup.
	ErrAuthentication = errors.New("authentication failed")

	// ErrTimeout means contract synchronization exceeded its bound. Fatal at
	// startup.
	ErrTimeout = errors.New("timed out")

	// ErrNotFound means a requested symbol resolved to no usable data. Scoped
	// to one call; the session stays valid.
	ErrNotFound = errors.New("not found")
)
