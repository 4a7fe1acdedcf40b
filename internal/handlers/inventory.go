package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/validation"
)

type InventoryHandler struct {
	Client *techfix.Client
	Auth   *policy.AuthGate
}

func NewInventoryHandler(client *techfix.Client, auth *policy.AuthGate) *InventoryHandler {
	return &InventoryHandler{Client: client, Auth: auth}
}

// Overview lists every stock row.
func (h *InventoryHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionList, policy.ResourceInventory, nil); err != nil {
		forbid(w, r)
		return
	}
	rows, err := h.Client.AllInventory(r.Context())
	if err != nil {
		if wantsHTML(r) {
			renderTemplate(w, r, "inventory", map[string]any{"Error": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_inventory", nil)
		return
	}
	names := map[int64]string{}
	if products, err := h.Client.Products(r.Context()); err == nil {
		for _, p := range products {
			names[p.ID] = p.Name
		}
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": rows, "total": len(rows)})
		return
	}
	renderTemplate(w, r, "inventory", map[string]any{"Rows": rows, "ProductNames": names})
}

// Changes shows the audit trail, for one product when product_id is given,
// across all products otherwise.
func (h *InventoryHandler) Changes(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionView, policy.ResourceInventory, nil); err != nil {
		forbid(w, r)
		return
	}
	productID := idParam(r, "product_id")
	var changes []techfix.InventoryChange
	var err error
	if productID > 0 {
		changes, err = h.Client.InventoryChanges(r.Context(), productID)
	} else {
		changes, err = h.Client.AllInventoryChanges(r.Context())
	}
	if err != nil && !techfix.IsNotFound(err) {
		if wantsHTML(r) {
			renderTemplate(w, r, "inventory_changes", map[string]any{"Error": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_changes", nil)
		return
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": changes, "total": len(changes)})
		return
	}
	data := map[string]any{"Changes": changes}
	if productID > 0 {
		if p, err := h.Client.Product(r.Context(), productID); err == nil {
			data["Product"] = p
		}
	}
	renderTemplate(w, r, "inventory_changes", data)
}

// PurchaseHistory lists the purchase-reason audit rows of one product.
func (h *InventoryHandler) PurchaseHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionView, policy.ResourceInventory, nil); err != nil {
		forbid(w, r)
		return
	}
	productID := idParam(r, "product_id")
	if productID <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	changes, err := h.Client.InventoryChanges(r.Context(), productID)
	if err != nil && !techfix.IsNotFound(err) {
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_changes", nil)
		return
	}
	var history []techfix.InventoryChange
	for _, c := range changes {
		if c.Reason == techfix.ReasonPurchase {
			history = append(history, c)
		}
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": history, "total": len(history)})
		return
	}
	data := map[string]any{"Changes": history}
	if p, err := h.Client.Product(r.Context(), productID); err == nil {
		data["Product"] = p
	}
	renderTemplate(w, r, "purchase_history", data)
}

// AddStock records a supply delivery for a product.
func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionUpdate, policy.ResourceInventory, nil); err != nil {
		forbid(w, r)
		return
	}
	if r.Method == http.MethodGet {
		data := map[string]any{}
		if products, err := h.Client.Products(r.Context()); err == nil {
			data["Products"] = products
		}
		renderTemplate(w, r, "add_stock", data)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	productID := idParam(r, "product_id")
	qty, _ := strconv.Atoi(r.FormValue("quantity"))
	v := validation.Violations{}
	if productID <= 0 {
		v["product_id"] = "required"
	}
	validation.PositiveInt("quantity", qty, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		renderTemplate(w, r, "add_stock", map[string]any{"Errors": v})
		return
	}

	if err := h.Client.AddStock(r.Context(), techfix.AddStockRequest{ProductID: productID, Quantity: qty}); err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "add_stock_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "stock_added")
		http.Redirect(w, r, "/inventory/changes?product_id="+strconv.FormatInt(productID, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}
