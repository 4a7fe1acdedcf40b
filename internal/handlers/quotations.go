package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/workflow"
)

type QuotationHandler struct {
	Client *techfix.Client
	Auth   *policy.AuthGate
	Svc    *workflow.QuotationService
}

func NewQuotationHandler(client *techfix.Client, auth *policy.AuthGate, svc *workflow.QuotationService) *QuotationHandler {
	return &QuotationHandler{Client: client, Auth: auth, Svc: svc}
}

// List shows the quotations visible to the acting user, split into a
// requests tab and a quotes tab.
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.Svc.List(r.Context())
	if err != nil {
		if wantsHTML(r) {
			renderTemplate(w, r, "quotations", map[string]any{"Error": err.Error(), "Tab": "requests"})
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "failed_to_list_quotations", nil)
		return
	}
	var requests, quotes []techfix.Quotation
	for _, q := range quotations {
		if q.QuotationType == techfix.QuotationRequest {
			requests = append(requests, q)
		} else {
			quotes = append(quotes, q)
		}
	}
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"requests": requests, "quotes": quotes})
		return
	}
	tab := r.URL.Query().Get("tab")
	if tab != "quotes" {
		tab = "requests"
	}
	renderTemplate(w, r, "quotations", map[string]any{
		"Requests":  requests,
		"Quotes":    quotes,
		"Tab":       tab,
		"CanCreate": h.Auth.Can(r.Context(), gate.ActionCreate, policy.ResourceQuotation, nil),
	})
}

// Detail shows a quotation with its counterpart documents and the actions
// available to the acting user.
func (h *QuotationHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	d, err := h.Svc.View(r.Context(), id)
	if err != nil {
		if techfix.IsNotFound(err) {
			if wantsHTML(r) {
				http.NotFound(w, r)
				return
			}
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "quotation_fetch_failed", nil)
		return
	}
	q := d.Quotation
	pending := q.RFQStatus == techfix.StatusPending
	data := map[string]any{
		"Quotation":    q,
		"LinkedQuotes": d.LinkedQuotes,
		"SourceRFQ":    d.SourceRFQ,
		"CanSubmit":    pending && q.LinkedQuotationID == nil && len(d.LinkedQuotes) == 0 && h.Auth.Can(r.Context(), gate.ActionSubmit, policy.ResourceQuotation, q),
		"CanApprove":   pending && !q.IsRequest() && h.Auth.Can(r.Context(), gate.ActionApprove, policy.ResourceQuotation, nil),
		"CanDecline":   pending && h.Auth.Can(r.Context(), gate.ActionDecline, policy.ResourceQuotation, nil),
	}
	// Product names for the line items.
	names := map[int64]string{}
	for _, line := range q.QuotationProducts {
		if p, err := h.Client.Product(r.Context(), line.ProductID); err == nil {
			names[line.ProductID] = p.Name
		}
	}
	data["ProductNames"] = names
	if !wantsHTML(r) {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	renderTemplate(w, r, "quotation_detail", data)
}

// NewRFQ renders and processes the request-for-quotation form.
func (h *QuotationHandler) NewRFQ(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Authorize(r.Context(), gate.ActionCreate, policy.ResourceQuotation, nil); err != nil {
		forbid(w, r)
		return
	}
	if r.Method == http.MethodGet {
		data := map[string]any{}
		if suppliers, err := h.Client.Suppliers(r.Context()); err == nil {
			data["Suppliers"] = suppliers
		}
		if products, err := h.Client.Products(r.Context()); err == nil {
			data["Products"] = products
		}
		renderTemplate(w, r, "create_rfq", data)
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
	supplierID := idParam(r, "supplier_id")
	notes := strings.TrimSpace(r.FormValue("notes"))
	lines := parseLines(r)

	created, err := h.Svc.CreateRFQ(r.Context(), supplierID, notes, lines)
	if err != nil {
		if errors.Is(err, workflow.ErrNoLines) {
			httpx.JSONError(w, http.StatusBadRequest, "no_lines", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "rfq_create_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "rfq_created")
		http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(created.ID, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// SubmitQuote renders and processes the supplier's pricing form for an RFQ.
func (h *QuotationHandler) SubmitQuote(w http.ResponseWriter, r *http.Request) {
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	rfq, err := h.Client.Quotation(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.Auth.Authorize(r.Context(), gate.ActionSubmit, policy.ResourceQuotation, rfq); err != nil {
		forbid(w, r)
		return
	}
	if rfq.LinkedQuotationID != nil {
		if wantsHTML(r) {
			middleware.Flash(w, r, "quote_already")
			http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
			return
		}
		httpx.JSONError(w, http.StatusConflict, "quote_already", nil)
		return
	}

	if r.Method == http.MethodGet {
		names := map[int64]string{}
		for _, line := range rfq.QuotationProducts {
			if p, err := h.Client.Product(r.Context(), line.ProductID); err == nil {
				names[line.ProductID] = p.Name
			}
		}
		renderTemplate(w, r, "submit_quote", map[string]any{"RFQ": rfq, "ProductNames": names})
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
	prices := map[int64]float64{}
	for _, line := range rfq.QuotationProducts {
		raw := r.FormValue("price_" + strconv.FormatInt(line.ProductID, 10))
		price, _ := strconv.ParseFloat(raw, 64)
		prices[line.ProductID] = price
	}

	quote, err := h.Svc.SubmitQuote(r.Context(), rfq, prices)
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidPrices) {
			if wantsHTML(r) {
				middleware.Flash(w, r, "quote_bad_prices")
				http.Redirect(w, r, "/quotations/submit?id="+strconv.FormatInt(id, 10), statusSeeOther)
				return
			}
			httpx.JSONError(w, http.StatusBadRequest, "quote_bad_prices", nil)
			return
		}
		if errors.Is(err, workflow.ErrAlreadyQuoted) {
			if wantsHTML(r) {
				middleware.Flash(w, r, "quote_already")
				http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
				return
			}
			httpx.JSONError(w, http.StatusConflict, "quote_already", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadGateway, "quote_submit_failed", nil)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "quote_submitted")
		http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(quote.ID, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusCreated, quote)
}

func (h *QuotationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res, err := h.Svc.Approve(r.Context(), id)
	if err != nil {
		h.resolveError(w, r, id, err)
		return
	}
	if wantsHTML(r) {
		if res.InventoryWarning != nil {
			middleware.Flash(w, r, "approved_partial")
		} else {
			middleware.Flash(w, r, "approved_ok")
		}
		http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotation": res.Quotation,
		"warning":   res.InventoryWarning != nil,
	})
}

func (h *QuotationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r, "id")
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	q, err := h.Svc.Decline(r.Context(), id)
	if err != nil {
		h.resolveError(w, r, id, err)
		return
	}
	if wantsHTML(r) {
		middleware.Flash(w, r, "declined_ok")
		http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuotationHandler) resolveError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, gate.ErrUnauthorized), errors.Is(err, gate.ErrNoPolicyDefined):
		forbid(w, r)
	case errors.Is(err, workflow.ErrAlreadyResolved):
		if wantsHTML(r) {
			http.Redirect(w, r, "/quotations/view?id="+strconv.FormatInt(id, 10), statusSeeOther)
			return
		}
		httpx.JSONError(w, http.StatusConflict, "already_resolved", nil)
	default:
		httpx.JSONError(w, http.StatusBadGateway, "quotation_action_failed", nil)
	}
}

// parseLines reads repeated product_id/quantity form pairs.
func parseLines(r *http.Request) []workflow.Line {
	var lines []workflow.Line
	ids := r.Form["product_id"]
	qtys := r.Form["quantity"]
	for i, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		qty := 1
		if i < len(qtys) {
			if n, err := strconv.Atoi(qtys[i]); err == nil && n > 0 {
				qty = n
			}
		}
		lines = append(lines, workflow.Line{ProductID: id, Quantity: qty})
	}
	return lines
}
