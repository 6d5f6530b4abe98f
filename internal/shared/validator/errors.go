package validator

import (
	"errors"
	"fmt"

	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
	"github.com/go-playground/validator/v10"
)

// ToErrorResponse converts gin binding/validator errors into a standardized response.
func ToErrorResponse(err error) (*sharedError.ErrorResponse, bool) {
	message, ok := FirstMessage(err)
	if !ok {
		return nil, false
	}

	resp := sharedError.ValidationFailed
	resp.Message = message
	return &resp, true
}

// FirstMessage returns a user-facing message for the first field that failed validation
func FirstMessage(err error) (string, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", false
	}

	if len(validationErrors) == 0 {
		return "", false
	}

	// Only the first validation error is reported
	return getErrorMessage(validationErrors[0]), true
}

// getErrorMessage returns user-friendly error message for validation error
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s cannot be empty.", fe.Field())
	case "email":
		return "Email address is not valid."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
	case "isodate":
		return fmt.Sprintf("%s must be a date in yyyy-MM-dd format.", fe.Field())
	default:
		return fmt.Sprintf("'%s' is not valid.", fe.Field())
	}
}
