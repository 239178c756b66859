// Package validator registers domain validation tags with gin's binding engine.
package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"posrail/internal/core/types"
)

// Register installs the custom validation tags used by the request DTOs.
// Call once at startup before the router handles traffic.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	validations := map[string]validator.Func{
		"unitkind": func(fl validator.FieldLevel) bool {
			return types.UnitKind(fl.Field().String()).Valid()
		},
		"salemode": func(fl validator.FieldLevel) bool {
			return types.SaleMode(fl.Field().String()).Valid()
		},
		"movementtype": func(fl validator.FieldLevel) bool {
			return types.MovementType(fl.Field().String()).Valid()
		},
	}

	for tag, fn := range validations {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return nil
}
