package auth

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/flash"
	"github.com/r56149203/EduSphere/utils/middleware"
)

// Profile shows the caller's profile
// GET /profile
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.UserContext(), middleware.CurrentSession(c).UserID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return h.renderProfile(c, fiber.StatusOK, user, nil)
}

// UpdateProfile handles both profile forms, selected by the action field
// POST /profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	session := middleware.CurrentSession(c)

	switch c.FormValue("action") {
	case "update_profile":
		var in services.ProfileInput
		if err := c.BodyParser(&in); err != nil {
			return handlers.ErrorPage(c, fiber.StatusBadRequest)
		}
		if _, err := h.users.UpdateProfile(c.UserContext(), session.UserID, in); err != nil {
			return h.profileError(c, err, func(u *model.User) {
				u.FullName, u.Email = in.FullName, in.Email
			})
		}
		flash.Success(c, "Profile updated successfully!")

	case "change_password":
		var in services.PasswordInput
		if err := c.BodyParser(&in); err != nil {
			return handlers.ErrorPage(c, fiber.StatusBadRequest)
		}
		user, err := h.users.ChangePassword(c.UserContext(), session.UserID, in)
		if err != nil {
			return h.profileError(c, err, nil)
		}
		// The version bump ended every session including this one
		if err := h.sessions.Issue(c, user); err != nil {
			return handlers.ServiceError(c, fmt.Errorf("failed to reissue session: %w", err))
		}
		flash.Success(c, "Password changed successfully!")

	default:
		return handlers.ErrorPage(c, fiber.StatusBadRequest)
	}

	return c.Redirect("/profile")
}

// profileError redisplays the profile with messages; edit applies the rejected input
func (h *AuthHandler) profileError(c *fiber.Ctx, err error, edit func(*model.User)) error {
	if !handlers.IsUserError(err) {
		return handlers.ServiceError(c, err)
	}
	user, loadErr := h.users.GetByID(c.UserContext(), middleware.CurrentSession(c).UserID)
	if loadErr != nil {
		return handlers.ServiceError(c, loadErr)
	}
	if edit != nil {
		edit(user)
	}
	return h.renderProfile(c, fiber.StatusUnprocessableEntity, user, services.Messages(err))
}

func (h *AuthHandler) renderProfile(c *fiber.Ctx, status int, user *model.User, errs []string) error {
	return handlers.Render(c, status, "auth/profile", fiber.Map{
		"Title":  "My Profile",
		"User":   user,
		"Errors": errs,
	})
}
