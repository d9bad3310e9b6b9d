package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/utils/flash"
	"github.com/r56149203/EduSphere/utils/middleware"
)

// Layout wraps every page
const Layout = "layouts/main"

type errorText struct {
	heading string
	message string
}

var errorPages = map[int]errorText{
	fiber.StatusBadRequest:          {"Bad Request", "The request could not be understood."},
	fiber.StatusForbidden:           {"Access Denied", "You do not have permission to access this page."},
	fiber.StatusNotFound:            {"Page Not Found", "The page you are looking for does not exist."},
	fiber.StatusInternalServerError: {"Server Error", services.ErrSystem.Error()},
}

// Render renders a page inside the main layout with the per-request values
// every template expects (session, CSRF token, flash messages).
func Render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Session"] = middleware.CurrentSession(c)
	data["CSRF"] = middleware.CSRFToken(c)
	data["Flash"] = flash.Pop(c)
	data["Year"] = time.Now().Year()
	if _, ok := data["Title"]; !ok {
		data["Title"] = ""
	}
	return c.Status(status).Render(name, data, Layout)
}

// ErrorPage renders the error page for code; unknown codes render as 500
func ErrorPage(c *fiber.Ctx, code int) error {
	text, ok := errorPages[code]
	if !ok {
		code = fiber.StatusInternalServerError
		text = errorPages[code]
	}
	return Render(c, code, "pages/error", fiber.Map{
		"Title":   text.heading,
		"Code":    code,
		"Heading": text.heading,
		"Message": text.message,
	})
}

// ErrorHandler is the app-wide fiber error handler
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	if _, ok := errorPages[code]; !ok && code < fiber.StatusInternalServerError {
		return c.Status(code).SendString(err.Error())
	}

	if renderErr := ErrorPage(c, code); renderErr != nil {
		log.Errorf("render error page: %v", renderErr)
		return c.Status(code).SendString(errorPages[fiber.StatusInternalServerError].message)
	}
	return nil
}

// ServiceError turns an error from a service into the matching redirect.
// Unexpected errors are logged with detail and shown as the generic 500 page.
func ServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Redirect("/error?code=404")
	case errors.Is(err, services.ErrForbidden):
		return c.Redirect("/error?code=403")
	}
	LogError(c, err)
	return ErrorPage(c, fiber.StatusInternalServerError)
}

// LogError logs err with the request it failed
func LogError(c *fiber.Ctx, err error) {
	log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
}

// IsUserError reports whether err carries messages meant for the form
func IsUserError(err error) bool {
	var ve *services.ValidationError
	var ue *services.UploadError
	if errors.As(err, &ve) || errors.As(err, &ue) {
		return true
	}
	for _, known := range []error{
		services.ErrEmailTaken, services.ErrInvalidCredentials, services.ErrWrongPassword,
		services.ErrSelfDelete, services.ErrSelfRoleChange, services.ErrInvalidRole, services.ErrHierarchy,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// QueryID parses a positive id query parameter, 0 when absent or malformed
func QueryID(c *fiber.Ctx, key string) uint {
	return parseID(c.Query(key))
}

// FormID parses a positive id form field, 0 when absent or malformed
func FormID(c *fiber.Ctx, key string) uint {
	return parseID(c.FormValue(key))
}

func parseID(raw string) uint {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// Actor identifies the caller for service writes
func Actor(c *fiber.Ctx) services.Actor {
	actor := services.Actor{IP: c.IP()}
	if s := middleware.CurrentSession(c); s != nil {
		actor.UserID = s.UserID
	}
	return actor
}
