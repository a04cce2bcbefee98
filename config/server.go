package config

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
)

// StartServer listens on SERVER_PORT (default 8080) and shuts down
// gracefully on SIGINT/SIGTERM.
func StartServer(app *fiber.App) {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%s", port)); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	log.Printf("server listening on port %s", port)

	<-sigChan
	log.Println("shutdown signal received, closing...")

	if err := app.Shutdown(); err != nil {
		log.Printf("error during shutdown: %v", err)
	}

	log.Println("server stopped")
}
