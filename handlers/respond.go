// Package handlers contains the HTTP layer. Handlers parse and validate
// the transport, delegate to the services and translate service errors
// into status codes; business rules never live here.
package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

// serviceError maps the service error taxonomy onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var duplicateErr *services.DuplicateError
	var transitionErr *services.InvalidTransitionError
	var forbiddenErr *services.ForbiddenError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Message})
	case errors.As(err, &duplicateErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": duplicateErr.Message,
			"field": duplicateErr.Field,
		})
	case errors.As(err, &transitionErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": transitionErr.Error()})
	case errors.As(err, &forbiddenErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": forbiddenErr.Message})
	case errors.Is(err, services.ErrSaleNotFound),
		errors.Is(err, services.ErrPartnerNotFound),
		errors.Is(err, services.ErrOperatorNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrReportNotFound),
		errors.Is(err, services.ErrAlertNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Printf("handler: internal error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Erro interno do servidor"})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

// idParam parses a positive numeric path parameter.
func idParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
