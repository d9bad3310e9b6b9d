package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/database"
)

// HandlePing reports that the process is serving requests
func HandlePing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleCheckHealth additionally pings the database
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"database": "down",
		})
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "up"})
}
