package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type ReportHandler struct {
	service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

type generateReportRequest struct {
	PartnerID uint `json:"partner_id"`
	Month     int  `json:"month"`
	Year      int  `json:"year"`
}

func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	var req generateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Pedido inválido")
	}
	report, err := h.service.Generate(req.PartnerID, req.Month, req.Year, middleware.ActingUser(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	partnerID := uint(c.QueryInt("partner_id", 0))
	reports, err := h.service.List(partnerID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"reports": reports})
}

func (h *ReportHandler) Download(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	report, err := h.service.Get(id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.Download(report.FilePath, report.FileName)
}

func (h *ReportHandler) Email(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if err := h.service.Email(id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Relatório enviado"})
}
