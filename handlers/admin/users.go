package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/flash"
)

// ListUsers shows every user with role and delete controls.
// GET /admin/users?delete=N deletes user N first.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	if id := handlers.QueryID(c, "delete"); id != 0 {
		h.deleteUser(c, id)
		return c.Redirect("/admin/users")
	}

	users, err := h.users.ListUsers(c.UserContext())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return handlers.Render(c, fiber.StatusOK, "admin/users", fiber.Map{
		"Title":  "Manage Users",
		"Active": "users",
		"Users":  users,
		"Roles":  model.Roles,
	})
}

// UpdateUsers applies a role change or delete selected by the action field
// POST /admin/users
func (h *AdminHandler) UpdateUsers(c *fiber.Ctx) error {
	id := handlers.FormID(c, "user_id")

	switch c.FormValue("action") {
	case "update_role":
		if _, err := h.users.UpdateRole(c.UserContext(), handlers.Actor(c), id, c.FormValue("role")); err != nil {
			flashError(c, err)
			break
		}
		flash.Success(c, "User role updated successfully!")

	case "delete":
		h.deleteUser(c, id)

	default:
		flash.Error(c, "Unknown action.")
	}

	return c.Redirect("/admin/users")
}

func (h *AdminHandler) deleteUser(c *fiber.Ctx, id uint) {
	if err := h.users.Delete(c.UserContext(), handlers.Actor(c), id); err != nil {
		flashError(c, err)
		return
	}
	flash.Success(c, "User deleted successfully!")
}

// flashError queues the user-facing message of err; unexpected errors are
// logged and shown as the generic message
func flashError(c *fiber.Ctx, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		flash.Error(c, "User not found.")
	case handlers.IsUserError(err):
		flash.Error(c, services.Messages(err)[0])
	default:
		handlers.LogError(c, err)
		flash.Error(c, services.ErrSystem.Error())
	}
}
