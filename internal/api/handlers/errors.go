package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// describeBindError turns a binding failure into a message for the client
func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "MinPrice":
		return "minPrice is required and must be a positive number"
	case "Email":
		return "email must be a valid email address"
	case "TimeWindowFrom", "TimeWindowTo":
		return fmt.Sprintf("%s must be a time in HH:mm format", jsonName(fe.Field()))
	default:
		return fmt.Sprintf("%s failed %s validation", jsonName(fe.Field()), fe.Tag())
	}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
