package propsync

import (
	"fmt"

	"github.com/kailas-cloud/propsync/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidQuery = domain.ErrInvalidQuery
)

// API error codes.
const (
	CodeBadRequest       = "bad_request"
	CodeValidationFailed = "validation_failed"
	CodeInternalError    = "internal_error"
)

// APIError is a non-2xx response from the service.
// Rejected queries unwrap to ErrInvalidQuery.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("propsync: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("propsync: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return ErrInvalidQuery
	default:
		return nil
	}
}
