package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/domain"
	applog "vinylhub/internal/log"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

const (
	msgProductMissing   = "Completa todos los campos"
	msgProductNumbers   = "Precio y stock deben ser números"
	msgProductDuplicate = "Error: ya existe un producto con ese código"
	msgProductSaveFail  = "Error: no se pudo guardar el producto"
)

type AdminHandler struct {
	Catalog *services.CatalogService
	Reports *services.ReportService
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.Reports.Dashboard(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.dashboard.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar el panel.")
	}
	return render(c, "admin/dashboard", fiber.Map{"Stats": stats})
}

// GET /admin/productos
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	products, err := h.Catalog.Search(c.UserContext(), q)
	if err != nil {
		applog.Error(c, "admin.products.list.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar los productos.")
	}
	return render(c, "admin/productos_list", fiber.Map{"Products": products, "Q": q})
}

// GET /admin/productos/new
func (h *AdminHandler) NewForm(c *fiber.Ctx) error {
	return render(c, "admin/productos_form", fiber.Map{"Item": nil})
}

// POST /admin/productos/new and /admin/productos
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	p, msg := productForm(c)
	if msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "producto"})
		return render(c.Status(fiber.StatusBadRequest), "admin/productos_form", fiber.Map{"Item": nil, "Form": p, "Err": msg})
	}
	id, err := h.Catalog.Create(c.UserContext(), p)
	if err != nil {
		return h.saveFailed(c, nil, p, err)
	}
	applog.Audit(c, "admin.products.create", map[string]any{"producto_id": id, "codigo": p.Code})
	return c.Redirect("/admin/productos")
}

// GET /admin/productos/:id/edit
func (h *AdminHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/admin/productos")
	}
	item, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			applog.Error(c, "admin.products.load.fail", err, map[string]any{"producto_id": id})
		}
		return c.Redirect("/admin/productos")
	}
	return render(c, "admin/productos_form", fiber.Map{"Item": item, "Form": item})
}

// POST /admin/productos/:id/edit and /admin/productos/:id
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Redirect("/admin/productos")
	}
	item, err := h.Catalog.Get(c.UserContext(), id)
	if err != nil {
		return c.Redirect("/admin/productos")
	}
	p, msg := productForm(c)
	p.ID = id
	if msg != "" {
		applog.Security(c, "validation.fail", map[string]any{"form": "producto", "producto_id": id})
		return render(c.Status(fiber.StatusBadRequest), "admin/productos_form", fiber.Map{"Item": item, "Form": p, "Err": msg})
	}
	if err := h.Catalog.Update(c.UserContext(), p); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Redirect("/admin/productos")
		}
		return h.saveFailed(c, &item, p, err)
	}
	applog.Audit(c, "admin.products.update", map[string]any{"producto_id": id, "codigo": p.Code})
	return c.Redirect("/admin/productos")
}

// POST /admin/productos/:id/delete
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if ok {
		if err := h.Catalog.Delete(c.UserContext(), id); err != nil {
			applog.Error(c, "admin.products.delete.fail", err, map[string]any{"producto_id": id})
		} else {
			applog.Audit(c, "admin.products.delete", map[string]any{"producto_id": id})
		}
	}
	return c.Redirect("/admin/productos")
}

func (h *AdminHandler) saveFailed(c *fiber.Ctx, item *domain.Product, p domain.Product, err error) error {
	msg := msgProductSaveFail
	status := fiber.StatusInternalServerError
	if errors.Is(err, domain.ErrDuplicate) {
		msg, status = msgProductDuplicate, fiber.StatusConflict
	} else {
		applog.Error(c, "admin.products.save.fail", err, map[string]any{"codigo": p.Code})
	}
	data := fiber.Map{"Item": nil, "Form": p, "Err": msg}
	if item != nil {
		data["Item"] = *item
	}
	return render(c.Status(status), "admin/productos_form", data)
}

// productForm reads the five product fields. The message is empty when the form is usable.
func productForm(c *fiber.Ctx) (domain.Product, string) {
	p := domain.Product{
		Code:     strings.TrimSpace(c.FormValue("codigo")),
		Name:     strings.TrimSpace(c.FormValue("nombre")),
		Category: strings.TrimSpace(c.FormValue("categoria")),
	}
	precio, stock := c.FormValue("precio"), c.FormValue("stock")
	if !validate.Required(p.Code, p.Name, precio, stock, p.Category) {
		return p, msgProductMissing
	}
	price, okPrice := validate.Int(precio)
	qty, okStock := validate.Int(stock)
	if !okPrice || !okStock {
		return p, msgProductNumbers
	}
	p.Price, p.Stock = price, int(qty)
	return p, ""
}
