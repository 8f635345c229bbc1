// Package validation provides custom validators for the application
package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"sellwatch/internal/timeutil"
)

// Initialize registers all custom validators
func Initialize() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("hhmm", validateClock)
		if err != nil {
			panic(err)
		}
	}
}

// validateClock checks that a string is a HH:mm time between 00:00 and 24:00
func validateClock(fl validator.FieldLevel) bool {
	_, err := timeutil.ToMinutes(fl.Field().String())
	return err == nil
}
