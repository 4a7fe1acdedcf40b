package handlers

import (
	"net/http"

	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

type SupplierHandler struct {
	Client *techfix.Client
}

func NewSupplierHandler(client *techfix.Client) *SupplierHandler {
	return &SupplierHandler{Client: client}
}

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Client.Suppliers(r.Context())
	if err != nil {
		if wantsHTML(r) {
			renderTemplate(w, r, "suppliers", map[string]any{"Error": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_suppliers", nil)
		return
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": suppliers, "total": len(suppliers)})
		return
	}
	renderTemplate(w, r, "suppliers", map[string]any{"Suppliers": suppliers})
}

// Detail shows one supplier and the catalog entries they own.
func (h *SupplierHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	supplier, err := h.Client.Supplier(r.Context(), id)
	if err != nil {
		if techfix.IsNotFound(err) {
			if wantsHTML(r) {
				http.NotFound(w, r)
				return
			}
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "supplier_fetch_failed", nil)
		return
	}
	data := map[string]any{"Supplier": supplier}
	if products, err := h.Client.ProductsBySupplier(r.Context(), id); err == nil {
		data["Products"] = products
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	renderTemplate(w, r, "supplier_detail", data)
}
