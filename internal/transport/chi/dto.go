package chi

import "github.com/kailas-cloud/propsync/internal/usecase/health"

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status health.Status                 `json:"status"`
	Checks map[string]health.CheckResult `json:"checks"`
}

// SearchPropertiesParams are the canonical query parameters of GET /properties.
type SearchPropertiesParams struct {
	City        *string  `form:"city,omitempty" json:"city,omitempty"`
	IsAvailable *bool    `form:"isAvailable,omitempty" json:"isAvailable,omitempty"`
	PriceMin    *float64 `form:"priceMin,omitempty" json:"priceMin,omitempty"`
	PriceMax    *float64 `form:"priceMax,omitempty" json:"priceMax,omitempty"`
	Limit       *int     `form:"limit,omitempty" json:"limit,omitempty"`
	Offset      *int     `form:"offset,omitempty" json:"offset,omitempty"`
}
