package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts failures into a
// fiber 400 error with one readable line per failing field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, strings.Join(messages, "; "))
}
