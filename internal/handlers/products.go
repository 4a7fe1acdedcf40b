package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/validation"
	"github.com/diewo77/techfix-admin/internal/workflow"
)

type ProductHandler struct {
	Client    *techfix.Client
	Auth      *policy.AuthGate
	Purchases *workflow.PurchaseService
}

func NewProductHandler(client *techfix.Client, auth *policy.AuthGate, purchases *workflow.PurchaseService) *ProductHandler {
	return &ProductHandler{Client: client, Auth: auth, Purchases: purchases}
}

// List renders the catalog. Admins also get the create form and the supplier
// directory for the supplier select.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.Client.Products(r.Context())
	if err != nil {
		if wantsHTML(r) {
			renderTemplate(w, r, "products", map[string]any{"Error": err.Error()})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_products", nil)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q != "" {
		lower := strings.ToLower(q)
		filtered := products[:0]
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), lower) || strings.Contains(strings.ToLower(p.Description), lower) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": len(products)})
		return
	}
	data := map[string]any{"Products": products, "Query": q}
	if h.Auth.Can(r.Context(), gate.ActionCreate, policy.ResourceProduct, nil) {
		data["CanManage"] = true
		if suppliers, err := h.Client.Suppliers(r.Context()); err == nil {
			data["Suppliers"] = suppliers
		}
	}
	renderTemplate(w, r, "products", data)
}

// Detail renders one product with its stock level and supplier.
func (h *ProductHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	product, err := h.Client.Product(r.Context(), id)
	if err != nil {
		if techfix.IsNotFound(err) {
			if wantsHTML(r) {
				http.NotFound(w, r)
				return
			}
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "product_fetch_failed", nil)
		return
	}
	data := map[string]any{"Product": product}
	// Missing stock or supplier rows degrade the page, never fail it.
	if inv, err := h.Client.InventoryByProduct(r.Context(), id); err == nil {
		data["Inventory"] = inv
	}
	if sid := product.SupplierIDInt(); sid > 0 {
		if supplier, err := h.Client.Supplier(r.Context(), sid); err == nil {
			data["Supplier"] = supplier
		}
	}
	data["CanManage"] = h.Auth.Can(r.Context(), gate.ActionUpdate, policy.ResourceProduct, product)
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	renderTemplate(w, r, "product_detail", data)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionCreate, policy.ResourceProduct, nil); err != nil {
		forbid(w, r)
		return
	}

	var input techfix.Product
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		price, _ := strconv.ParseFloat(r.FormValue("price"), 64)
		input = techfix.Product{
			Name:        strings.TrimSpace(r.FormValue("name")),
			Description: strings.TrimSpace(r.FormValue("description")),
			Price:       price,
			SupplierID:  strings.TrimSpace(r.FormValue("supplier_id")),
		}
	}

	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.PositiveFloat("price", input.Price, v)
	validation.Required("supplier_id", input.SupplierID, v)
	if !v.Empty() {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		renderTemplate(w, r, "products", map[string]any{"Errors": v, "CanManage": true})
		return
	}

	created, err := h.Client.CreateProduct(r.Context(), input)
	if err != nil {
		if httpx.WantsJSON(r) {
			httpx.JSONError(w, http.StatusBadGateway, "product_create_failed", nil)
			return
		}
		renderTemplate(w, r, "products", map[string]any{"Error": err.Error(), "CanManage": true})
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, created)
		return
	}
	middleware.Flash(w, r, "product_created")
	http.Redirect(w, r, "/products", statusSeeOther)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Auth.Authorize(r.Context(), gate.ActionUpdate, policy.ResourceProduct, nil); err != nil {
		forbid(w, r)
		return
	}
	current, err := h.Client.Product(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Name        *string  `json:"name"`
			Price       *float64 `json:"price"`
			Description *string  `json:"description"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
		if body.Name != nil {
			current.Name = *body.Name
		}
		if body.Price != nil {
			current.Price = *body.Price
		}
		if body.Description != nil {
			current.Description = *body.Description
		}
	} else {
		if v := r.FormValue("name"); v != "" {
			current.Name = v
		}
		if v := r.FormValue("price"); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				current.Price = f
			}
		}
		if v := r.FormValue("description"); v != "" {
			current.Description = v
		}
	}

	v := validation.Violations{}
	validation.Required("name", current.Name, v)
	validation.PositiveFloat("price", current.Price, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	updated, err := h.Client.UpdateProduct(r.Context(), id, *current)
	if err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "product_update_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "product_updated")
		http.Redirect(w, r, "/products/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Auth.Authorize(r.Context(), gate.ActionDelete, policy.ResourceProduct, nil); err != nil {
		forbid(w, r)
		return
	}
	if err := h.Client.DeleteProduct(r.Context(), id); err != nil {
		httpx.JSONError(w, http.StatusBadGateway, "delete_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "product_deleted")
		http.Redirect(w, r, "/products", statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Buy purchases a single product immediately without going through the cart.
func (h *ProductHandler) Buy(w http.ResponseWriter, r *http.Request) {
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
	qty, _ := strconv.Atoi(r.FormValue("quantity"))
	res, err := h.Purchases.BuyNow(r.Context(), *product, qty)
	if err != nil {
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
	httpx.JSON(w, http.StatusCreated, res.Purchase)
}

func forbid(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	middleware.Flash(w, r, "forbidden")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
