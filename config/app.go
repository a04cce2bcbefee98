// Package config wires the application together: Fiber app setup, global
// middleware and server lifecycle.
package config

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/routes"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/services"
)

// SetupApp creates the Fiber instance with the global middleware and all
// routes registered.
func SetupApp(db *gorm.DB, mailer services.Mailer) *fiber.App {
	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		StrictRouting: false,
		ServerHeader:  "MPGrupo CRM",
		AppName:       "MPGrupo CRM API",
		BodyLimit:     10 * 1024 * 1024,
		// Standard encoder/decoder so UTF-8 (Portuguese accents) survives.
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${status} - ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		Output:     os.Stdout,
	}))

	app.Use(recover.New())

	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ORIGINS", "*"),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       int(12 * time.Hour.Seconds()),
	}))

	routes.Setup(app, db, mailer, getEnv("REPORTS_DIR", "reports"))

	log.Println("application routes registered")

	return app
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
