package errors

import (
	"errors"
	"net/http"
)

// Error kinds. Every domain error wraps exactly one of them.
var (
	// ErrValidation is returned for malformed or missing input.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when a unique resource already exists.
	ErrConflict = errors.New("conflict")
	// ErrAuth is returned for missing, invalid or expired credentials.
	ErrAuth = errors.New("authentication error")
	// ErrNotFound is returned when a resource is missing or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded is returned when no free applications remain and no subscription is active.
	ErrQuotaExceeded = errors.New("no applications remaining")
	// ErrUnsupportedMedia is returned for uploads of the wrong type or size.
	ErrUnsupportedMedia = errors.New("unsupported media")
	// ErrExtraction is returned when no text can be extracted from an upload.
	ErrExtraction = errors.New("extraction error")
	// ErrParse is returned when a structured-extraction reply is not usable JSON.
	ErrParse = errors.New("parse error")
	// ErrUpstream is returned when an external API call fails.
	ErrUpstream = errors.New("upstream error")
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = New(ErrAuth, "invalid email or password")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = New(ErrConflict, "email already registered")
	// ErrUserNotFound is returned when the token identity no longer resolves to a user.
	ErrUserNotFound = New(ErrNotFound, "user not found")
	// ErrApplicationNotFound is returned for missing or foreign applications.
	ErrApplicationNotFound = New(ErrNotFound, "application not found")
	// ErrNoApplicationsRemaining is returned when the quota gate rejects a creation.
	ErrNoApplicationsRemaining = New(ErrQuotaExceeded, "no applications remaining")
	// ErrInvalidCard is returned when card details fail superficial validation.
	ErrInvalidCard = New(ErrValidation, "invalid card details")
)

// DomainError carries a user-facing message and the kind it belongs to.
type DomainError struct {
	kind    error
	message string
}

// New creates an error of the given kind with a human-readable message.
func New(kind error, message string) error {
	return &DomainError{kind: kind, message: message}
}

func (e *DomainError) Error() string {
	return e.message
}

func (e *DomainError) Unwrap() error {
	return e.kind
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error                string `json:"error"`
	Code                 string `json:"code,omitempty"`
	Message              string `json:"message,omitempty"`
	RequiresSubscription bool   `json:"requiresSubscription,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	resp := ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
	if e.Code == "QUOTA_EXCEEDED" {
		resp.Message = "Please subscribe to continue applying to jobs"
		resp.RequiresSubscription = true
	}
	return resp
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	msg := "internal server error"
	var de *DomainError
	if errors.As(err, &de) {
		msg = de.Error()
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusBadRequest, msg, "INVALID_CREDENTIALS")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, msg, "VALIDATION_ERROR")
	case errors.Is(err, ErrConflict):
		return NewHTTPError(http.StatusBadRequest, msg, "CONFLICT")
	case errors.Is(err, ErrAuth):
		return NewHTTPError(http.StatusForbidden, msg, "INVALID_TOKEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, msg, "NOT_FOUND")
	case errors.Is(err, ErrQuotaExceeded):
		return NewHTTPError(http.StatusForbidden, msg, "QUOTA_EXCEEDED")
	case errors.Is(err, ErrUnsupportedMedia):
		return NewHTTPError(http.StatusBadRequest, msg, "UNSUPPORTED_MEDIA")
	case errors.Is(err, ErrExtraction):
		return NewHTTPError(http.StatusBadRequest, msg, "EXTRACTION_FAILED")
	case errors.Is(err, ErrParse):
		return NewHTTPError(http.StatusBadRequest, msg, "PARSE_FAILED")
	case errors.Is(err, ErrUpstream):
		return NewHTTPError(http.StatusBadGateway, msg, "UPSTREAM_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
