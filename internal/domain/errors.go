package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a search term or barcode is blank
	ErrEmptyInput = errors.New("empty input")

	// ErrProductNotFound is returned when the catalog has no matching product
	ErrProductNotFound = errors.New("product not found")

	// ErrTimeout is returned when the upstream catalog does not answer in time
	ErrTimeout = errors.New("catalog request timed out")

	// ErrNetworkFailure is returned for any other failed upstream request
	ErrNetworkFailure = errors.New("catalog request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)

// ErrorKind classifies a pipeline failure for display
type ErrorKind string

const (
	ErrorNone           ErrorKind = ""
	ErrorEmptyInput     ErrorKind = "empty-input"
	ErrorNotFound       ErrorKind = "not-found"
	ErrorTimeout        ErrorKind = "timeout"
	ErrorNetworkFailure ErrorKind = "network-failure"
)

// KindOf maps an error onto the pipeline error taxonomy.
// Anything that is not recognised counts as a network failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, ErrEmptyInput):
		return ErrorEmptyInput
	case errors.Is(err, ErrProductNotFound):
		return ErrorNotFound
	case errors.Is(err, ErrTimeout):
		return ErrorTimeout
	default:
		return ErrorNetworkFailure
	}
}

// PipelineError is the last error recorded by a query, with its user-facing message
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
