package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/domain"
	"vinylhub/internal/log"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

const (
	msgLoginMissing  = "Ingresa usuario y contraseña"
	msgLoginFail     = "Credenciales inválidas"
	msgRegisterEmpty = "Completa usuario y contraseña"
	msgRegisterFail  = "Usuario ya existe o inválido"
	msgThrottled     = "Demasiados intentos. Intenta más tarde."
)

type AuthHandler struct {
	Auth     *services.AuthService
	Sessions *Sessions
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": "", "Next": validate.Next(c.Query("next"), "")})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	username := c.FormValue("username")
	next := validate.Next(c.FormValue("next"), "")

	u, err := h.Auth.Login(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		msg := msgLoginFail
		status := fiber.StatusUnauthorized
		fields := map[string]any{"username": strings.TrimSpace(username)}
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			msg, status = msgLoginMissing, fiber.StatusBadRequest
			fields["reason"] = "missing"
		case errors.Is(err, domain.ErrBadCredentials):
			fields["reason"] = "mismatch"
		default:
			log.Error(c, "auth.login.error", err, nil)
		}
		log.Security(c, "auth.login.fail", fields)
		return render(c.Status(status), "login", fiber.Map{"Err": msg, "Next": next})
	}

	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	SetIdentity(sess, u)
	if err := sess.Save(); err != nil {
		return err
	}
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.login.success", map[string]any{"username": u.Username})
	return c.Redirect(validate.Next(next, "/admin"))
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Destroy(); err != nil {
		return err
	}
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	username := c.FormValue("username")
	u, err := h.Auth.Register(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		msg := msgRegisterFail
		if errors.Is(err, services.ErrMissingCredentials) {
			msg = msgRegisterEmpty
		} else if !errors.Is(err, domain.ErrDuplicate) {
			log.Error(c, "auth.register.error", err, nil)
		}
		log.Security(c, "auth.register.fail", map[string]any{"username": strings.TrimSpace(username)})
		return render(c.Status(fiber.StatusBadRequest), "register", fiber.Map{"Err": msg, "Username": username})
	}

	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	SetIdentity(sess, u)
	if err := sess.Save(); err != nil {
		return err
	}
	c.Locals("user_id", u.ID)
	log.Audit(c, "auth.register", map[string]any{"username": u.Username})
	return c.Redirect("/")
}

// Throttled answers a rate-limited login or register post with its form again, keeping
// the csrf token and the redirect target.
func (h *AuthHandler) Throttled(tmpl string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c.Status(fiber.StatusTooManyRequests), tmpl, fiber.Map{
			"Err":      msgThrottled,
			"Next":     validate.Next(c.FormValue("next"), ""),
			"Username": c.FormValue("username"),
		})
	}
}
