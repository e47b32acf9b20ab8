package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	applog "vinylhub/internal/log"
)

// RequireAuth sends anonymous visitors to the login form, remembering where they were going.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentUser(c); ok {
			return c.Next()
		}
		applog.Security(c, "access.denied.admin", nil)
		return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
	}
}
