package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/log"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

type StoreHandler struct {
	Catalog *services.CatalogService
	Reports *services.ReportService
}

func (h *StoreHandler) Home(c *fiber.Ctx) error {
	stats, err := h.Reports.Dashboard(c.UserContext())
	if err != nil {
		log.Error(c, "home.stats.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar la portada. Intenta nuevamente.")
	}
	featured, err := h.Catalog.Featured(c.UserContext())
	if err != nil {
		log.Error(c, "home.featured.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar la portada. Intenta nuevamente.")
	}
	return render(c, "home", fiber.Map{"Stats": stats, "Featured": featured})
}

// Tienda lists the whole catalog, or one category when :categoria is set.
func (h *StoreHandler) Tienda(c *fiber.Ctx) error {
	category := services.AllCategories
	if raw := c.Params("categoria"); raw != "" {
		slug, ok := validate.Category(raw)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "categoria"})
			return c.Redirect("/tienda")
		}
		category = slug
	}
	products, err := h.Catalog.Store(c.UserContext(), category)
	if err != nil {
		log.Error(c, "store.list.fail", err, map[string]any{"categoria": category})
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar la tienda. Intenta nuevamente.")
	}
	return render(c, "tienda", fiber.Map{"Category": category, "Products": products})
}

func (h *StoreHandler) Sobre(c *fiber.Ctx) error { return render(c, "sobre", nil) }

func (h *StoreHandler) Blog(c *fiber.Ctx) error { return render(c, "blog", nil) }
