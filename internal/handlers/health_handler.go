package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-engine/internal/config"
)

type HealthHandler struct {
	server config.ServerConfig
}

func NewHealthHandler(server config.ServerConfig) *HealthHandler {
	return &HealthHandler{server: server}
}

// HandleHealth handles GET /health
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"message":     "CV evaluation engine is running",
		"version":     h.server.Version,
		"environment": h.server.Env,
		"time":        time.Now(),
	})
}

// HandleRoot handles GET /
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to " + h.server.AppName,
		"version": h.server.Version,
		"status":  "running",
	})
}
