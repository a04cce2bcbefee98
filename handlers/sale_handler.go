package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type SaleHandler struct {
	service *services.SaleService
	audit   *services.AuditService
}

func NewSaleHandler(service *services.SaleService, audit *services.AuditService) *SaleHandler {
	return &SaleHandler{service: service, audit: audit}
}

func (h *SaleHandler) List(c *fiber.Ctx) error {
	var query models.SaleQuery
	if err := c.QueryParser(&query); err != nil {
		return badRequest(c, "Filtros inválidos")
	}
	sales, err := h.service.List(query, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"sales": sales})
}

func (h *SaleHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	sale, err := h.service.Get(id, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sale)
}

// Create registers a sale. When the payload carries malformed CPE/CUI
// values and force is not set, creation is withheld and the warnings are
// returned for the client to confirm.
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var input services.CreateSaleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}

	sale, warnings, err := h.service.Create(input, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	if sale == nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"warnings": warnings})
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

func (h *SaleHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	var input services.UpdateSaleInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	sale, err := h.service.Update(id, input, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(sale)
}

type addNoteRequest struct {
	Content string `json:"content"`
}

func (h *SaleHandler) AddNote(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	var req addNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	sale, err := h.service.AddNote(id, req.Content, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// History returns the sale's audit trail.
func (h *SaleHandler) History(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if _, err := h.service.Get(id, middleware.ActingUser(c)); err != nil {
		return serviceError(c, err)
	}
	entries, err := h.audit.History(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"history": entries})
}

func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if err := h.service.Delete(id, middleware.ActingUser(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Venda eliminada"})
}
