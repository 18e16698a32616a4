// Package apierror provides standardized error response structures for the API
// and the domain error kinds raised by the settlement engine.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	// Category is the single human-readable message category shown to the operator.
	Category string `json:"category,omitempty"`
	// NeedsVerification marks outcomes that are neither a clean success nor a clean failure.
	NeedsVerification bool `json:"needs_verification,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for a domain error, falling back to a generic
// message for anything that is not an *Error.
func FromError(err error) *APIError {
	e, ok := As(err)
	if !ok {
		return &APIError{Detail: "Error interno del servidor", Category: categoryFallo}
	}
	return &APIError{
		Detail:            e.Msg,
		Category:          e.Category(),
		NeedsVerification: e.NeedsVerification,
	}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
