package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vinylhub/internal/domain"
	applog "vinylhub/internal/log"
	"vinylhub/internal/services"
	"vinylhub/internal/validate"
)

const (
	msgCheckoutOK   = "Compra realizada con éxito 🎉"
	msgCheckoutFail = "Ocurrió un error al procesar la compra"
)

type CartHandler struct {
	Cart     *services.CartService
	Checkout *services.CheckoutService
	Sessions *Sessions
}

// POST /cart/add
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	id, ok := validate.ID(c.FormValue("producto_id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "producto_id"})
		return c.Redirect("/tienda")
	}
	qty := validate.Qty(c.FormValue("cantidad"))

	cart := LoadCart(sess)
	if err := h.Cart.Add(c.UserContext(), &cart, id, qty); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Redirect("/tienda")
		}
		return err
	}
	if err := SaveCart(sess, cart); err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/cart")
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	return h.renderCart(c, fiber.StatusOK, LoadCart(sess), "")
}

// POST /cart/clear
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	cart := LoadCart(sess)
	cart.Clear()
	if err := SaveCart(sess, cart); err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/cart")
}

// POST /cart/checkout
func (h *CartHandler) PlaceOrder(c *fiber.Ctx) error {
	sess, err := h.Sessions.Get(c)
	if err != nil {
		return err
	}
	cart := LoadCart(sess)
	if cart.Empty() {
		return c.Redirect("/cart")
	}

	sales, err := h.Checkout.Checkout(c.UserContext(), cart)
	if err != nil {
		var se *domain.StockError
		if errors.As(err, &se) {
			applog.Info(c, "checkout.rejected", map[string]any{
				"producto_id": se.ProductID, "requested": se.Requested, "available": se.Available,
			})
			return h.renderCart(c, fiber.StatusConflict, cart, "Stock insuficiente para: "+se.Label())
		}
		applog.Error(c, "checkout.fail", err, map[string]any{"lines": len(cart.Lines)})
		return h.renderCart(c, fiber.StatusInternalServerError, cart, msgCheckoutFail)
	}

	cart.Clear()
	if err := SaveCart(sess, cart); err != nil {
		return err
	}
	if err := sess.Save(); err != nil {
		return err
	}
	c.Locals("cartCount", 0)

	folios := make([]string, 0, len(sales))
	var total int64
	for _, s := range sales {
		folios = append(folios, s.Folio)
		total += s.Total
	}
	applog.Audit(c, "checkout.success", map[string]any{"folios": folios, "total": total})
	return render(c, "cart", fiber.Map{"Cart": domain.CartView{}, "Msg": msgCheckoutOK, "Folios": folios})
}

func (h *CartHandler) renderCart(c *fiber.Ctx, status int, cart domain.Cart, msg string) error {
	view, err := h.Cart.View(c.UserContext(), cart)
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return errorPage(c, fiber.StatusInternalServerError, "No pudimos cargar tu carrito.")
	}
	return render(c.Status(status), "cart", fiber.Map{"Cart": view, "Msg": msg})
}
