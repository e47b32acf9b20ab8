package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/domain"
	applog "vinylhub/internal/log"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

const msgSellRejected = "Stock insuficiente o producto no existe"

// ProcessHandler records counter sales from the admin panel.
type ProcessHandler struct {
	Catalog  *services.CatalogService
	Checkout *services.CheckoutService
	Reports  *services.ReportService
}

// GET /admin/procesos
func (h *ProcessHandler) Page(c *fiber.Ctx) error {
	return h.renderPage(c, fiber.StatusOK, "")
}

// POST /admin/procesos
func (h *ProcessHandler) Sell(c *fiber.Ctx) error {
	id, ok := validate.ID(c.FormValue("producto_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "producto_id"})
		return h.renderPage(c, fiber.StatusBadRequest, msgSellRejected)
	}
	qty := validate.Qty(c.FormValue("cantidad"))

	sale, err := h.Checkout.SellOne(c.UserContext(), id, qty)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			applog.Info(c, "admin.sale.rejected", map[string]any{"producto_id": id, "cantidad": qty})
			return h.renderPage(c, fiber.StatusConflict, msgSellRejected)
		}
		applog.Error(c, "admin.sale.fail", err, map[string]any{"producto_id": id, "cantidad": qty})
		return h.renderPage(c, fiber.StatusInternalServerError, "Ocurrió un error al registrar la venta")
	}
	applog.Audit(c, "admin.sale.create", map[string]any{
		"producto_id": id, "cantidad": sale.Quantity, "total": sale.Total, "folio": sale.Folio,
	})
	return c.Redirect("/admin/procesos")
}

func (h *ProcessHandler) renderPage(c *fiber.Ctx, status int, msg string) error {
	products, err := h.Catalog.ForSale(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.procesos.load.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar los procesos.")
	}
	sales, err := h.Reports.Recent(c.UserContext(), 10)
	if err != nil {
		applog.Error(c, "admin.procesos.load.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar los procesos.")
	}
	return render(c.Status(status), "admin/procesos", fiber.Map{"Products": products, "Sales": sales, "Msg": msg})
}
