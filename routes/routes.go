// Package routes wires the HTTP surface: it builds the services and
// handlers and registers every endpoint group under /api.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/handlers"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/middleware"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

// Setup registers all routes on the app.
func Setup(app *fiber.App, db *gorm.DB, mailer services.Mailer, reportsDir string) {
	auditService := services.NewAuditService(db)
	alertService := services.NewAlertService(db, mailer)
	saleService := services.NewSaleService(db, alertService, auditService)
	partnerService := services.NewPartnerService(db, mailer)
	operatorService := services.NewOperatorService(db)
	dashboardService := services.NewDashboardService(db)
	reportService := services.NewReportService(db, mailer, reportsDir)

	authHandler := handlers.NewAuthHandler(db)
	saleHandler := handlers.NewSaleHandler(saleService, auditService)
	partnerHandler := handlers.NewPartnerHandler(partnerService)
	operatorHandler := handlers.NewOperatorHandler(operatorService)
	alertHandler := handlers.NewAlertHandler(alertService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	reportHandler := handlers.NewReportHandler(reportService)

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	authed := api.Group("", middleware.AuthRequired(db))
	authed.Post("/auth/change-password", authHandler.ChangePassword)
	authed.Get("/auth/me", authHandler.Me)

	sales := authed.Group("/sales")
	sales.Get("/", saleHandler.List)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.Get)
	sales.Put("/:id", saleHandler.Update)
	sales.Post("/:id/notes", saleHandler.AddNote)
	sales.Get("/:id/history", saleHandler.History)
	sales.Delete("/:id", middleware.RequireRoles(models.RoleAdmin), saleHandler.Delete)

	partners := authed.Group("/partners", middleware.RequireStaff())
	partners.Get("/", partnerHandler.List)
	partners.Post("/", partnerHandler.Create)
	partners.Get("/:id", partnerHandler.Get)
	partners.Put("/:id", partnerHandler.Update)
	partners.Delete("/:id", middleware.RequireRoles(models.RoleAdmin), partnerHandler.Delete)
	partners.Post("/:id/commercials", partnerHandler.CreateCommercial)

	operators := authed.Group("/operators")
	operators.Get("/", operatorHandler.List)
	operators.Get("/:id", operatorHandler.Get)
	operators.Post("/", middleware.RequireStaff(), operatorHandler.Create)
	operators.Put("/:id", middleware.RequireStaff(), operatorHandler.Update)
	operators.Delete("/:id", middleware.RequireRoles(models.RoleAdmin), operatorHandler.Delete)

	alerts := authed.Group("/alerts")
	alerts.Get("/", alertHandler.List)
	alerts.Get("/unread-count", alertHandler.UnreadCount)
	alerts.Post("/:id/read", alertHandler.MarkRead)
	alerts.Post("/read-all", alertHandler.MarkAllRead)

	authed.Get("/dashboard", dashboardHandler.Stats)

	reports := authed.Group("/reports", middleware.RequireStaff())
	reports.Get("/", reportHandler.List)
	reports.Post("/", reportHandler.Generate)
	reports.Get("/:id/download", reportHandler.Download)
	reports.Post("/:id/email", reportHandler.Email)
}
