package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/flash"
)

// RegisterForm shows the registration page
// GET /register
func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return h.renderRegister(c, fiber.StatusOK, services.RegisterInput{}, nil)
}

// Register creates a student account
// POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return h.renderRegister(c, fiber.StatusBadRequest, in, []string{"Invalid request body"})
	}

	if _, err := h.users.Register(c.UserContext(), in); err != nil {
		if handlers.IsUserError(err) {
			return h.renderRegister(c, fiber.StatusUnprocessableEntity, in, services.Messages(err))
		}
		return handlers.ServiceError(c, err)
	}

	flash.Success(c, "Registration successful! You can now login.")
	return c.Redirect("/login")
}

func (h *AuthHandler) renderRegister(c *fiber.Ctx, status int, in services.RegisterInput, errs []string) error {
	// Never echo passwords back into the form
	in.Password, in.ConfirmPassword = "", ""
	return handlers.Render(c, status, "auth/register", fiber.Map{
		"Title":  "Register",
		"Form":   in,
		"Errors": errs,
	})
}
