// Package flash carries one-shot success and error messages across a redirect.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const cookieName = "edusphere_flash"

// Messages is what the next rendered page shows
type Messages struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty reports whether there is nothing to show
func (m Messages) Empty() bool {
	return m.Success == "" && m.Error == ""
}

// Success queues a success message for the next page
func Success(c *fiber.Ctx, msg string) {
	set(c, Messages{Success: msg})
}

// Error queues an error message for the next page
func Error(c *fiber.Ctx, msg string) {
	set(c, Messages{Error: msg})
}

func set(c *fiber.Ctx, m Messages) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		Expires:  time.Now().Add(time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Pop returns the queued messages and clears the cookie
func Pop(c *fiber.Ctx) Messages {
	var m Messages

	raw := c.Cookies(cookieName)
	if raw == "" {
		return m
	}
	c.ClearCookie(cookieName)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return m
	}
	_ = json.Unmarshal(data, &m)
	return m
}
