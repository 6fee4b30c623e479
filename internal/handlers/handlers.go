package handlers

import (
	"html"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
)

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="alert alert-danger" role="alert">` + html.EscapeString(message) + `</div>`,
	)
}

// clientKey identifies a browser for per-client debouncing. The session ID
// is used when a session exists, otherwise the remote address.
func clientKey(c fiber.Ctx) string {
	if sess := session.FromContext(c); sess != nil {
		if id := sess.ID(); id != "" {
			return id
		}
	}
	return c.IP()
}
