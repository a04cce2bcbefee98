package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type OperatorHandler struct {
	service *services.OperatorService
}

func NewOperatorHandler(service *services.OperatorService) *OperatorHandler {
	return &OperatorHandler{service: service}
}

func (h *OperatorHandler) List(c *fiber.Ctx) error {
	operators, err := h.service.List(middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"operators": operators})
}

func (h *OperatorHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	operator, err := h.service.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(operator)
}

func (h *OperatorHandler) Create(c *fiber.Ctx) error {
	var input services.CreateOperatorInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	operator, err := h.service.Create(input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(operator)
}

func (h *OperatorHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	var input services.UpdateOperatorInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	operator, err := h.service.Update(id, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(operator)
}

func (h *OperatorHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if err := h.service.Delete(id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Operadora eliminada"})
}
