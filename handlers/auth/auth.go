package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils"
	"github.com/r56149203/EduSphere/utils/middleware"
)

// AuthHandler handles login, registration, logout and the profile page
type AuthHandler struct {
	users      *services.UserService
	sessions   *middleware.AuthMiddleware
	bruteForce *middleware.BruteForceProtection
	activity   *utils.ActivityLogger
}

// NewAuthHandler creates a new auth handler; bruteForce may be nil
func NewAuthHandler(users *services.UserService, sessions *middleware.AuthMiddleware, bruteForce *middleware.BruteForceProtection, activity *utils.ActivityLogger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		sessions:   sessions,
		bruteForce: bruteForce,
		activity:   activity,
	}
}

// landing is where a user goes after login
func landing(role string) string {
	if role == model.RoleAdmin {
		return "/admin/dashboard"
	}
	return "/"
}

// RedirectIfLoggedIn sends signed-in users away from the login and register pages
func RedirectIfLoggedIn(c *fiber.Ctx) error {
	if s := middleware.CurrentSession(c); s != nil {
		return c.Redirect(landing(s.Role))
	}
	return c.Next()
}
