package utils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/database"
)

// MakeHTTPHandleFunc adapts a handler that needs the store into a fiber handler
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return handler(c, store)
	}
}
