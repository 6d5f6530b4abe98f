package member

import (
	"errors"
	"fmt"

	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
	"gorm.io/gorm"
)

// lookupError translates a store miss into the domain sentinel; other store errors pass through wrapped
func lookupError(err error, sentinel error, entity string, ID uint32) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s id=%d: %w", entity, ID, sentinel)
	}
	return fmt.Errorf("find %s id=%d: %w", entity, ID, err)
}

// validateRequest applies the request's binding rules inside the engine
func validateRequest(request any, sentinel error) error {
	if err := validator.Struct(request); err != nil {
		if message, ok := validator.FirstMessage(err); ok {
			return fmt.Errorf("%s %w", message, sentinel)
		}
		return fmt.Errorf("validate request: %w", err)
	}
	return nil
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}
