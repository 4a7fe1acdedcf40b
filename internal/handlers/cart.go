package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/workflow"
)

type CartHandler struct {
	Client    *techfix.Client
	Carts     cart.Store
	Purchases *workflow.PurchaseService
}

func NewCartHandler(client *techfix.Client, carts cart.Store, purchases *workflow.PurchaseService) *CartHandler {
	return &CartHandler{Client: client, Carts: carts, Purchases: purchases}
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	user := session.UserFrom(r.Context())
	c, err := h.Carts.Load(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "cart_load_failed", nil)
		return
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": c.Items, "total": c.Total()})
		return
	}
	renderTemplate(w, r, "cart", map[string]any{"Cart": c, "Total": "$" + c.Total().StringFixed(2)})
}

// Add puts one unit of a product into the cart; a repeated add increments the
// existing line instead of duplicating it.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	product, err := h.Client.Product(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	user := session.UserFrom(r.Context())
	if err := h.Carts.Add(user.ID, *product); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "cart_add_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "cart_added")
		http.Redirect(w, r, "/products", statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	user := session.UserFrom(r.Context())
	if err := h.Carts.Clear(user.ID); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "cart_clear_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "cart_cleared")
		http.Redirect(w, r, "/cart", statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Checkout turns the cart into a purchase. A stock sync failure after the
// purchase was recorded surfaces as a warning, not an error.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	res, err := h.Purchases.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, workflow.ErrEmptyCart) {
			if wantsHTML(r) {
				middleware.Flash(w, r, "cart_empty")
				http.Redirect(w, r, "/cart", statusSeeOther)
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "cart_empty", nil)
			return
		}
		if wantsHTML(r) {
			middleware.Flash(w, r, "purchase_failed")
			http.Redirect(w, r, "/cart", statusSeeOther)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "purchase_failed", nil)
		return
	}
	if wantsHTML(r) {
		if res.InventoryWarning != nil {
			middleware.Flash(w, r, "purchase_partial")
		} else {
			middleware.Flash(w, r, "purchase_ok")
		}
		http.Redirect(w, r, "/purchases", statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"purchase": res.Purchase,
		"warning":  res.InventoryWarning != nil,
	})
}
