// Package errors defines stable error codes for ripple's failure modes.
package errors

import "fmt"

// Code represents a stable error code surfaced to callers.
type Code string

const (
	// StoreUnavailable indicates the graph database could not be opened or written
	StoreUnavailable Code = "STORE_UNAVAILABLE"
	// QueryFailed indicates a graph read failed; no partial results are returned
	QueryFailed Code = "QUERY_FAILED"
	// ExtractionFailed indicates a single file could not be parsed
	ExtractionFailed Code = "EXTRACTION_FAILED"
	// CrawlFailed indicates the project root could not be walked at all
	CrawlFailed Code = "CRAWL_FAILED"
	// RepoNotFound indicates no ingested file matched a repository prefix
	RepoNotFound Code = "REPO_NOT_FOUND"
	// ExplainFailed indicates the explanation service call failed
	ExplainFailed Code = "EXPLAIN_FAILED"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid Code = "CONFIG_INVALID"
)

// Error is a coded error with an optional underlying cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New creates a coded error.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}
