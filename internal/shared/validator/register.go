package validator

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// GetValidator returns the validator instance from Gin binding
func GetValidator() (*validator.Validate, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("validator engine unavailable")
	}
	return v, nil
}

// RegisterAll registers all common validators defined in this package.
// Safe to call more than once; registration happens on the first call.
func RegisterAll() error {
	registerOnce.Do(func() {
		registerErr = register()
	})
	return registerErr
}

func register() error {
	v, err := GetValidator()
	if err != nil {
		return fmt.Errorf("get validator engine: %w", err)
	}

	// Register common validators
	if err := v.RegisterValidation("notblank", ValidateNotBlank); err != nil {
		return fmt.Errorf("register notblank validator: %w", err)
	}
	if err := v.RegisterValidation("isodate", ValidateISODate); err != nil {
		return fmt.Errorf("register isodate validator: %w", err)
	}

	slog.Info("common validators registered", "validators", "notblank,isodate")
	return nil
}

// Struct validates obj against its binding tags outside of a gin request,
// so services apply the same rules the handlers do.
func Struct(obj any) error {
	if err := RegisterAll(); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
