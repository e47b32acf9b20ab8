package http

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/session"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"vinylhub/internal/config"
	"vinylhub/internal/http/handlers"
	applog "vinylhub/internal/log"
	"vinylhub/internal/report"
)

const (
	sessionCookie = "vinylhub_sid"
	csrfCookie    = "csrf_"
)

// NewApp builds the fiber application with every middleware and route.
func NewApp(cfg config.Config, db *sqlx.DB) *fiber.App {
	loc := cfg.Location()

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(cfg.Env == "development")
	engine.AddFunc("clp", report.CLP)
	engine.AddFunc("fecha", func(stored string) string {
		return report.LocalDate(stored, loc, "02-01-2006 15:04")
	})

	app := fiber.New(fiber.Config{
		Views:                 engine,
		DisableStartupMessage: cfg.Env == "test",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Algo salió mal. Intenta nuevamente."
			if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
				code, msg = fe.Code, fe.Message
			}
			applog.Error(c, "server.error", err, map[string]any{"status": code})
			if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg, "Year": time.Now().Year()}); rerr != nil {
				return c.Status(code).SendString(msg)
			}
			return nil
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20

	// ---------- Middlewares ----------
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.Env == "development"}))
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Output: applog.Writer(),
		Format: `{"level":"info","kind":"access","time":"${time}","req_id":"${locals:requestid}","status":${status},"method":"${method}","path":"${path}","latency":"${latency}","ip":"${ip}"}` + "\n",
		TimeFormat: time.RFC3339,
	}))
	app.Use(helmet.New())
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), "/static/")
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).SendString("Demasiadas solicitudes. Intenta en un minuto.")
			},
		}))
	}
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key:    cookieKey(cfg.SessionSecret),
		Except: []string{csrfCookie},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     csrfCookie,
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		ContextKey:     "csrf",
		Expiration:     cfg.SessionTTL,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/") || c.Path() == "/healthz"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"error": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{
				"Message": "La verificación de seguridad falló. Recarga la página e intenta de nuevo.",
			})
		},
	}))

	store := session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.Env == "production",
	})
	sessions := handlers.NewSessions(store)
	app.Use(sessions.Attach())

	// ---------- Static assets ----------
	app.Static("/static", cfg.StaticDir)

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, sessions)

	// Public pages
	app.Get("/", deps.Store.Home)
	app.Get("/tienda", deps.Store.Tienda)
	app.Get("/tienda/:categoria", deps.Store.Tienda)
	app.Get("/sobre", deps.Store.Sobre)
	app.Get("/blog", deps.Store.Blog)

	// Cart
	app.Get("/cart", deps.Cart.View)
	app.Post("/cart/add", deps.Cart.Add)
	app.Post("/cart/clear", deps.Cart.Clear)
	app.Post("/cart/checkout", deps.Cart.PlaceOrder)

	// Auth routes (login throttled)
	app.Get("/login", deps.Auth.LoginForm)
	app.Post("/login", throttled(cfg.LoginRateLimit, "login", deps.Auth.Login, deps.Auth.Throttled("login"))...)
	app.Post("/logout", deps.Auth.Logout)
	app.Get("/register", deps.Auth.RegisterForm)
	app.Post("/register", throttled(cfg.LoginRateLimit, "register", deps.Auth.Register, deps.Auth.Throttled("register"))...)

	// Admin
	admin := app.Group("/admin", handlers.RequireAuth())
	admin.Get("/", deps.Admin.Dashboard)
	admin.Get("/productos", deps.Admin.Products)
	admin.Get("/productos/new", deps.Admin.NewForm)
	admin.Post("/productos/new", deps.Admin.Create)
	admin.Post("/productos", deps.Admin.Create)
	admin.Get("/productos/:id/edit", deps.Admin.EditForm)
	admin.Post("/productos/:id/edit", deps.Admin.Update)
	admin.Post("/productos/:id/delete", deps.Admin.Delete)
	admin.Post("/productos/:id", deps.Admin.Update)
	admin.Get("/procesos", deps.Process.Page)
	admin.Post("/procesos", deps.Process.Sell)
	admin.Get("/reportes", deps.Report.Page)
	admin.Get("/reportes.csv", deps.Report.CSV)
	admin.Get("/reportes.pdf", deps.Report.PDF)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			applog.Error(c, "health.db.fail", err, nil)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{
			"Message": "Página no encontrada", "Year": time.Now().Year(),
		})
	})

	return app
}

// throttled puts a per-IP limiter of limit attempts per 10 minutes in front of h.
// Rejected requests go to reached.
func throttled(limit int, name string, h, reached fiber.Handler) []fiber.Handler {
	if limit <= 0 {
		return []fiber.Handler{h}
	}
	return []fiber.Handler{limiter.New(limiter.Config{
		Max:        limit,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|" + name
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate."+name+".hit", nil)
			return reached(c)
		},
	}), h}
}

// cookieKey derives the 32-byte AES key encryptcookie expects from the session secret.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("vinylhub-cookie:%s", secret)))
	return base64.StdEncoding.EncodeToString(sum[:])
}
