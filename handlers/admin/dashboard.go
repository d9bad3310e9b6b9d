package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
)

// Dashboard shows site-wide counts and the latest resources and users
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "admin/dashboard", fiber.Map{
		"Title":  "Admin Dashboard",
		"Active": "dashboard",
		"Stats":  stats,
	})
}
