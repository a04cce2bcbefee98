package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type AlertHandler struct {
	service *services.AlertService
}

func NewAlertHandler(service *services.AlertService) *AlertHandler {
	return &AlertHandler{service: service}
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	actor := middleware.ActingUser(c)
	onlyUnread := c.QueryBool("unread", false)
	limit := c.QueryInt("limit", 100)

	alerts, err := h.service.ListForUser(actor.ID, onlyUnread, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"alerts": alerts})
}

func (h *AlertHandler) UnreadCount(c *fiber.Ctx) error {
	actor := middleware.ActingUser(c)
	count, err := h.service.UnreadCount(actor.ID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "ID inválido")
	}
	if err := h.service.MarkRead(id, middleware.ActingUser(c).ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alerta marcado como lido"})
}

func (h *AlertHandler) MarkAllRead(c *fiber.Ctx) error {
	if err := h.service.MarkAllRead(middleware.ActingUser(c).ID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Alertas marcados como lidos"})
}
