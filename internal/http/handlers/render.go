package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	u, ok := currentUser(c)
	data["Auth"] = ok
	if ok {
		data["User"] = u
	}
	data["CartCount"] = c.Locals("cartCount")
	data["Year"] = c.Locals("year")

	// The csrf middleware stores the token in Locals; fall back to the cookie it set.
	tok, _ := c.Locals("csrf").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	data["CSRFToken"] = tok
	return c.Render(tmpl, data)
}

// errorPage renders the shared error view with a message safe to show.
func errorPage(c *fiber.Ctx, status int, msg string) error {
	return render(c.Status(status), "notfound", fiber.Map{"Message": msg})
}
