package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type PartnerHandler struct {
	service *services.PartnerService
}

func NewPartnerHandler(service *services.PartnerService) *PartnerHandler {
	return &PartnerHandler{service: service}
}

func (h *PartnerHandler) List(c *fiber.Ctx) error {
	partners, err := h.service.List()
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"partners": partners})
}

func (h *PartnerHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	partner, err := h.service.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(partner)
}

func (h *PartnerHandler) Create(c *fiber.Ctx) error {
	var input services.CreatePartnerInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	partner, err := h.service.Create(input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(partner)
}

func (h *PartnerHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	var input services.UpdatePartnerInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	partner, err := h.service.Update(id, input)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(partner)
}

func (h *PartnerHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if err := h.service.Delete(id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Parceiro eliminado"})
}

type createCommercialRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateCommercial provisions a partner_commercial login under a partner.
func (h *PartnerHandler) CreateCommercial(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	var req createCommercialRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	user, _, err := h.service.CreateCommercial(id, req.Name, req.Email)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}
