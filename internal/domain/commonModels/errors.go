package commonModels

import "errors"

var (
	// ErrValidation is a missing or malformed caller supplied field.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimitedUpstream is returned once the retry policy gave up on a rate limited call.
	ErrRateLimitedUpstream = errors.New("upstream rate limited")

	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrEmptyExtraction means the document produced no text to index.
	ErrEmptyExtraction = errors.New("no text found in document")

	// ErrConfigurationMismatch covers vector dimension and partition name mismatches.
	// It is never retried.
	ErrConfigurationMismatch = errors.New("configuration mismatch")

	ErrNotFound = errors.New("not found")
)
