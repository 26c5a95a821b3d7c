package middlewares

import (
	"errors"
	"reflect"
	"strings"

	"erp-backend/billing"
	"erp-backend/database"
	"erp-backend/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorHandler centralizes error responses and keeps messages sanitized.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 2) Struct validation errors (422 + per-field tag)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Business rule violations (422 + message)
	var be *billing.ValidationError
	if errors.As(err, &be) {
		body := fiber.Map{"message": be.Message}
		if be.Field != "" {
			body["errors"] = map[string]string{be.Field: be.Message}
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(body)
	}

	// 4) Lookups
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
	}
	if errors.Is(err, database.ErrTenantMissing) || errors.Is(err, database.ErrInvalidSchema) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "tenant context missing"})
	}

	// 5) Unknown errors (500)
	log := logger.WithComponent("http")
	log.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("internal error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "internal server error",
	})
}

// jsonFieldName reports validation errors under the request's json names.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
