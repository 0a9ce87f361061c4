package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/sims/internal/pkg/validation"
)

// RegisterValidators adds the field rules used in request binding tags to
// gin's validator engine. It must run before the first request is bound.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]func(string) bool{
		"personname": validation.IsValidName,
		"looseemail": validation.IsValidEmail,
		"storable":   validation.IsStorable,
		"username":   validation.IsValidUsername,
		"password":   validation.IsValidPassword,
	}
	for tag, rule := range rules {
		rule := rule
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return rule(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("registering %s validator: %w", tag, err)
		}
	}
	return nil
}
