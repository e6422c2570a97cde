package middleware

import (
	"errors"
	"net/http"

	"github.com/bilgisen/weeklyissue/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidatedKey is the Locals key holding the validated request body
const ValidatedKey = "validated"

var validate = validator.New()

// ValidateRequest parses the JSON body into a fresh T, validates it and
// stores the *T under ValidatedKey. An empty body validates the zero value.
func ValidateRequest[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(T)

		if len(c.Body()) > 0 {
			if err := c.BodyParser(req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid request body",
					"msg":   err.Error(),
				})
			}
		}

		if err := validate.Struct(req); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}

			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fields,
			})
		}

		c.Locals(ValidatedKey, req)
		return c.Next()
	}
}

// ErrorHandler is the fiber error handler: it logs and answers with JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
