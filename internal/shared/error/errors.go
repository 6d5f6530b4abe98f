package error

import (
	"errors"
	"net/http"
)

// Kind classifies domain errors independently of the transport
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindForbidden
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

type DomainError interface {
	error // Embed standard error interface
	Info() string
	Kind() Kind
}

type domainSentinel struct {
	errInfo string
	kind    Kind
}

func (e *domainSentinel) Error() string {
	return e.errInfo
}

func (e *domainSentinel) Info() string {
	return e.errInfo
}

func (e *domainSentinel) Kind() Kind {
	return e.kind
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"` // client message
}

// Common errors
var (
	domainErrorResponses = map[string]ErrorResponse{}

	// ValidationFailed indicates the request payload failed validation
	ValidationFailed = ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "ERROR-001", // METHOD_ARGUMENT_NOT_VALID
		Message: "The request is invalid.",
	}

	// InvalidRequest indicates the request format is invalid (e.g., JSON parsing error)
	InvalidRequest = ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "ERROR-002", // INVALID_REQUEST
		Message: "The request format is invalid.",
	}

	// InternalServerError indicates an unexpected server error
	InternalServerError = ErrorResponse{
		Status:  http.StatusInternalServerError,
		Code:    "ERROR-003", // INTERNAL_SERVER_ERROR
		Message: "An internal server error occurred.",
	}

	// RequestTimeout indicates the request deadline passed before a response was written
	RequestTimeout = ErrorResponse{
		Status:  http.StatusServiceUnavailable,
		Code:    "ERROR-005", // REQUEST_TIMEOUT
		Message: "The request timed out.",
	}

	RouteNotFound = ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "ERROR-006", // NO_HANDLER_FOUND
		Message: "No resource exists at this path.",
	}

	MethodNotAllowed = ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Code:    "ERROR-007", // METHOD_NOT_ALLOWED
		Message: "The method is not supported for this resource.",
	}
)

// NewDomainError creates a sentinel error that can participate in error chains.
func NewDomainError(errInfo string, kind Kind) DomainError {
	return &domainSentinel{errInfo: errInfo, kind: kind}
}

func NewNotFoundError(errInfo string) DomainError {
	return NewDomainError(errInfo, KindNotFound)
}

func NewValidationError(errInfo string) DomainError {
	return NewDomainError(errInfo, KindValidation)
}

func NewConflictError(errInfo string) DomainError {
	return NewDomainError(errInfo, KindConflict)
}

func NewForbiddenError(errInfo string) DomainError {
	return NewDomainError(errInfo, KindForbidden)
}

func NewUnsupportedError(errInfo string) DomainError {
	return NewDomainError(errInfo, KindUnsupported)
}

// KindOf returns the kind of the first domain error in the chain, or KindUnknown.
func KindOf(err error) Kind {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind()
	}
	return KindUnknown
}

// RegisterDomainErrorResponse registers a mapping between a domain error errInfo and a shared error response.
func RegisterDomainErrorResponse(errInfo string, resp ErrorResponse) {
	domainErrorResponses[errInfo] = resp
}

// ResolveDomainError converts a domain error into a shared error response if a mapping exists.
func ResolveDomainError(err error) (ErrorResponse, bool) {
	if err == nil {
		return ErrorResponse{}, false
	}

	var domainErr DomainError
	if errors.As(err, &domainErr) {
		if resp, ok := domainErrorResponses[domainErr.Info()]; ok {
			return resp, true
		}
	}
	return ErrorResponse{}, false
}

// StatusForKind returns the HTTP status a kind maps to when no explicit response is registered
func StatusForKind(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnsupported:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
