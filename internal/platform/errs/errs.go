package errs

import "fmt"

// Kind categorizes application errors for HTTP status mapping and for
// conversion into per-URL failure outcomes.
type Kind int

const (
	// Unknown represents an unclassified error.
	Unknown Kind = iota
	// InvalidInput indicates the request was malformed: a bad URL, an
	// empty batch, or a batch over the configured cap (HTTP 400).
	InvalidInput
	// Unreachable indicates the target URL could not be connected to (HTTP 502).
	Unreachable
	// Timeout indicates a pipeline stage exceeded its deadline (HTTP 504).
	Timeout
	// UpstreamError indicates the target returned an HTTP error status (HTTP 502).
	UpstreamError
	// TooLarge indicates the target's response exceeded the size cap (HTTP 502).
	TooLarge
	// ServiceUnavailable indicates an external capability (summarization)
	// failed. Recovered locally by the insight fallback; never surfaces
	// to the caller as a request failure.
	ServiceUnavailable
	// Internal indicates an unexpected fault inside the pipeline (HTTP 500).
	Internal
)

// AppError carries a category, user message, and original cause.
type AppError struct {
	Kind           Kind
	UpstreamStatus int // HTTP status code returned by the target domain
	Message        string
	Cause          error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}
