package validator

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format for calendar dates (yyyy-MM-dd)
const DateLayout = "2006-01-02"

// ValidateNotBlank rejects strings that are empty after trimming whitespace.
// "required" alone accepts "   ".
func ValidateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ValidateISODate validates a yyyy-MM-dd calendar date
func ValidateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}
