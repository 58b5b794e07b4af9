package domain

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for uploads whose extension is not one of
// the accepted image formats. No network call is attempted after it.
var ErrUnsupportedFormat = errors.New("unsupported image format (allowed: png, jpg, jpeg)")

// ErrImageTooLarge is returned for uploads above the configured size limit.
var ErrImageTooLarge = errors.New("image exceeds the maximum upload size")

// ErrMissingCredential is returned when no API key was supplied. It is
// checked before any client call.
var ErrMissingCredential = errors.New("API key is required")

// CompletionError wraps any failure of the completion API call: network,
// authentication, or rate limiting. It is fatal to the pipeline.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// SearchError wraps any failure of the search API call. The pipeline treats
// it as recoverable and produces the report without references.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("reference search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
