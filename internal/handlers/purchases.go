package handlers

import (
	"net/http"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

type PurchaseHandler struct {
	Client *techfix.Client
	Auth   *policy.AuthGate
}

func NewPurchaseHandler(client *techfix.Client, auth *policy.AuthGate) *PurchaseHandler {
	return &PurchaseHandler{Client: client, Auth: auth}
}

// List shows the purchase history: admins see every purchase, everyone else
// only their own.
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	user := session.UserFrom(r.Context())
	var purchases []techfix.Purchase
	var err error
	if h.Auth.Can(r.Context(), gate.ActionList, policy.ResourcePurchase, nil) {
		purchases, err = h.Client.Purchases(r.Context())
	} else {
		purchases, err = h.Client.PurchasesByUser(r.Context(), user.ID)
	}
	if err != nil {
		if wantsHTML(r) {
			renderTemplate(w, r, "purchases", map[string]any{"Error": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_purchases", nil)
		return
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": purchases, "total": len(purchases)})
		return
	}
	renderTemplate(w, r, "purchases", map[string]any{"Purchases": purchases})
}

func (h *PurchaseHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	purchase, err := h.Client.Purchase(r.Context(), id)
	if err != nil {
		if techfix.IsNotFound(err) {
			if wantsHTML(r) {
				http.NotFound(w, r)
				return
			}
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "purchase_fetch_failed", nil)
		return
	}
	// Non-admins only see their own purchases.
	user := session.UserFrom(r.Context())
	if !user.IsAdmin() && purchase.UserID != user.ID {
		forbid(w, r)
		return
	}
	// Resolve product names for the line items; a miss leaves the id visible.
	names := map[int64]string{}
	for _, item := range purchase.PurchaseItems {
		if _, ok := names[item.ProductID]; ok {
			continue
		}
		if p, err := h.Client.Product(r.Context(), item.ProductID); err == nil {
			names[item.ProductID] = p.Name
		}
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, purchase)
		return
	}
	renderTemplate(w, r, "purchase_detail", map[string]any{"Purchase": purchase, "ProductNames": names})
}
