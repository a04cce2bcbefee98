package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

type DashboardHandler struct {
	service *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	stats, err := h.service.Stats(middleware.ActingUser(c), year, month)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(stats)
}
