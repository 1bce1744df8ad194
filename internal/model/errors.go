package model

import "errors"

// Sentinel errors shared by the engine and the data-source backends.
// Transport failures are not sentinels: backends wrap them with context and
// callers treat any non-sentinel error as a transport problem.
var (
	// ErrUnauthorized means no credential, or a role below the required one,
	// before any remote call was attempted.
	ErrUnauthorized = errors.New("model: unauthorized")

	// ErrSessionExpired means the remote side rejected a previously valid
	// credential mid-operation (HTTP 401 equivalent).
	ErrSessionExpired = errors.New("model: session expired")

	// ErrNotFound means the requested review does not exist.
	ErrNotFound = errors.New("model: not found")
)
