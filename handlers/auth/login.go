package auth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/r56149203/EduSphere/handlers"
	"github.com/r56149203/EduSphere/services"
)

// LoginRequest represents the login form
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm shows the login page
// GET /login
func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return h.renderLogin(c, fiber.StatusOK, "", nil)
}

// Login checks credentials and starts a session
// POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return h.renderLogin(c, fiber.StatusBadRequest, "", []string{"Invalid request body"})
	}

	ip := c.IP()

	user, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			if err := h.bruteForce.RecordFailedAttempt(c.UserContext(), ip); err != nil {
				log.Warnf("login: failed to record attempt for %s: %v", ip, err)
			}
			h.activity.Log(0, ip, "login_failed", "Failed login for "+req.Email)
			return h.renderLogin(c, fiber.StatusUnauthorized, req.Email, services.Messages(err))
		}
		if handlers.IsUserError(err) {
			return h.renderLogin(c, fiber.StatusUnprocessableEntity, req.Email, services.Messages(err))
		}
		return handlers.ServiceError(c, err)
	}

	// Clear failed attempts on successful login
	h.bruteForce.RecordSuccessfulAttempt(c.UserContext(), ip)

	if err := h.sessions.Issue(c, user); err != nil {
		return handlers.ServiceError(c, fmt.Errorf("failed to issue session: %w", err))
	}

	h.activity.Log(user.ID, ip, "login", "User logged in")
	return c.Redirect(landing(user.Role))
}

// Locked answers a locked-out login attempt
func (h *AuthHandler) Locked(c *fiber.Ctx, retryAfter int) error {
	msg := fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter)
	return h.renderLogin(c, fiber.StatusTooManyRequests, c.FormValue("email"), []string{msg})
}

// Logout ends the session
// GET /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session := handlers.Actor(c)
	if err := h.sessions.Revoke(c); err != nil {
		log.Errorf("logout: failed to revoke session: %v", err)
	}
	if session.UserID != 0 {
		h.activity.Log(session.UserID, session.IP, "logout", "User logged out")
	}
	return c.Redirect("/login")
}

func (h *AuthHandler) renderLogin(c *fiber.Ctx, status int, email string, errs []string) error {
	return handlers.Render(c, status, "auth/login", fiber.Map{
		"Title":  "Login",
		"Email":  email,
		"Errors": errs,
	})
}
