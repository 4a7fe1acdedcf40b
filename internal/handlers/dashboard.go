package handlers

import (
	"net/http"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

type DashboardHandler struct {
	Client *techfix.Client
	Carts  cart.Store
}

func NewDashboardHandler(client *techfix.Client, carts cart.Store) *DashboardHandler {
	return &DashboardHandler{Client: client, Carts: carts}
}

// Home renders the landing page: a public welcome for anonymous visitors, a
// dashboard with live counts for signed-in users. Backend hiccups degrade
// the counts instead of failing the page.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	user := session.UserFrom(r.Context())
	if user == nil {
		renderTemplate(w, r, "index", nil)
		return
	}

	data := map[string]any{"User": user}
	stats := map[string]int{}
	if products, err := h.Client.Products(r.Context()); err == nil {
		stats["Products"] = len(products)
	}
	if user.IsAdmin() {
		if suppliers, err := h.Client.Suppliers(r.Context()); err == nil {
			stats["Suppliers"] = len(suppliers)
		}
		if purchases, err := h.Client.Purchases(r.Context()); err == nil {
			stats["Purchases"] = len(purchases)
		}
	} else {
		if purchases, err := h.Client.PurchasesByUser(r.Context(), user.ID); err == nil {
			stats["Purchases"] = len(purchases)
		}
	}
	if c, err := h.Carts.Load(user.ID); err == nil {
		count := 0
		for _, item := range c.Items {
			count += item.Quantity
		}
		stats["CartItems"] = count
	}
	data["Stats"] = stats
	renderTemplate(w, r, "dashboard", data)
}
