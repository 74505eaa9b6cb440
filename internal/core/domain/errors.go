package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIsDirectory indicates a folder was used where a file is required.
	ErrIsDirectory = errors.New("path is a directory")

	// Content Errors.

	// ErrFetchFailed indicates the file content could not be retrieved.
	// The document moves to PhaseFailed and may be retried.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDecodeFailed indicates the payload is not valid Unicode text.
	// Recovered by the loader: the document keeps its raw payload.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrForcedDecodeFailed indicates a manual override could not decode the payload.
	ErrForcedDecodeFailed = errors.New("forced decode failed")

	// ErrWorkerClosed indicates a decode request reached a released worker.
	ErrWorkerClosed = errors.New("decode worker closed")

	// ErrSessionClosed indicates the session no longer accepts documents.
	ErrSessionClosed = errors.New("session closed")

	// Remote Errors.

	// ErrAuthRequired indicates the repository host rejected anonymous access.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
