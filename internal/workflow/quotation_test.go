package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

var (
	adminUser    = &techfix.User{ID: 1, Username: "admin", Role: techfix.RoleAdmin}
	supplierUser = &techfix.User{ID: 2, Username: "acme", Role: techfix.RoleSupplier}
)

func ctxWith(u *techfix.User) context.Context {
	return session.WithUser(context.Background(), u)
}

func quotationService(t *testing.T, h http.Handler) *QuotationService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewQuotationService(techfix.New(srv.URL, 2*time.Second, nil), policy.NewAuthGate(), nil)
}

func pendingRFQ() *techfix.Quotation {
	return &techfix.Quotation{
		ID:            10,
		AdminID:       1,
		SupplierID:    2,
		QuotationType: techfix.QuotationRequest,
		RFQStatus:     techfix.StatusPending,
		QuotationProducts: []techfix.QuotationProduct{
			{ProductID: 1, Quantity: 3},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestSubmitQuoteRejectsBadPricesBeforeAnyCall(t *testing.T) {
	var calls int64
	svc := quotationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))

	prices := map[int64]float64{1: 12.50, 2: 0}
	if _, err := svc.SubmitQuote(ctxWith(supplierUser), pendingRFQ(), prices); err != ErrInvalidPrices {
		t.Fatalf("expected ErrInvalidPrices, got %v", err)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("no request may be issued when validation fails, got %d", calls)
	}
}

func TestSubmitQuoteBuildsLinkedQuote(t *testing.T) {
	var sent techfix.NewQuotation
	mux := http.NewServeMux()
	mux.HandleFunc("POST /quotations/submit-quote", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode: %v", err)
		}
		if err := json.NewEncoder(w).Encode(techfix.Quotation{ID: 20, QuotationType: techfix.QuotationQuote}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	svc := quotationService(t, mux)

	prices := map[int64]float64{1: 12.50, 2: 40}
	q, err := svc.SubmitQuote(ctxWith(supplierUser), pendingRFQ(), prices)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if q.ID != 20 {
		t.Fatalf("unexpected quotation %+v", q)
	}
	if sent.QuotationType != techfix.QuotationQuote {
		t.Errorf("expected quote type, got %v", sent.QuotationType)
	}
	if sent.LinkedQuotationID == nil || *sent.LinkedQuotationID != 10 {
		t.Errorf("expected link to RFQ 10, got %v", sent.LinkedQuotationID)
	}
	if sent.SupplierID != supplierUser.ID {
		t.Errorf("expected supplier %d, got %d", supplierUser.ID, sent.SupplierID)
	}
	if len(sent.QuotationProducts) != 2 || sent.QuotationProducts[0].Price != 12.50 {
		t.Errorf("unexpected lines %+v", sent.QuotationProducts)
	}
}

func TestSubmitQuoteRejectsAnsweredRequest(t *testing.T) {
	var calls int64
	svc := quotationService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))

	answered := int64(20)
	rfq := pendingRFQ()
	rfq.LinkedQuotationID = &answered

	prices := map[int64]float64{1: 12.50, 2: 40}
	if _, err := svc.SubmitQuote(ctxWith(supplierUser), rfq, prices); err != ErrAlreadyQuoted {
		t.Fatalf("expected ErrAlreadyQuoted, got %v", err)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("no request may be issued for an answered RFQ, got %d", calls)
	}
}

func TestSubmitQuoteOtherSupplierDenied(t *testing.T) {
	svc := quotationService(t, http.NewServeMux())
	other := &techfix.User{ID: 99, Username: "rival", Role: techfix.RoleSupplier}
	prices := map[int64]float64{1: 1, 2: 1}
	if _, err := svc.SubmitQuote(ctxWith(other), pendingRFQ(), prices); err == nil {
		t.Fatalf("expected authorization failure")
	}
}

func TestCreateRFQ(t *testing.T) {
	var sent techfix.NewQuotation
	mux := http.NewServeMux()
	mux.HandleFunc("POST /quotations/rfq", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode: %v", err)
		}
		if err := json.NewEncoder(w).Encode(techfix.Quotation{ID: 30}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	svc := quotationService(t, mux)

	lines := []Line{{ProductID: 5, Quantity: 10}}
	q, err := svc.CreateRFQ(ctxWith(adminUser), 2, "need stock", lines)
	if err != nil {
		t.Fatalf("create rfq: %v", err)
	}
	if q.ID != 30 {
		t.Fatalf("unexpected quotation %+v", q)
	}
	if sent.QuotationType != techfix.QuotationRequest || sent.AdminID != 1 || sent.SupplierID != 2 {
		t.Errorf("unexpected payload %+v", sent)
	}
}

func TestCreateRFQSupplierDenied(t *testing.T) {
	svc := quotationService(t, http.NewServeMux())
	if _, err := svc.CreateRFQ(ctxWith(supplierUser), 2, "", []Line{{ProductID: 1, Quantity: 1}}); err == nil {
		t.Fatalf("expected authorization failure")
	}
}

func TestCreateRFQNeedsLines(t *testing.T) {
	svc := quotationService(t, http.NewServeMux())
	if _, err := svc.CreateRFQ(ctxWith(adminUser), 2, "", nil); err != ErrNoLines {
		t.Fatalf("expected ErrNoLines, got %v", err)
	}
}

func TestApproveQuoteRestocks(t *testing.T) {
	var approved int64
	var deltas []techfix.InventoryUpdate
	quote := techfix.Quotation{
		ID:            20,
		SupplierID:    2,
		QuotationType: techfix.QuotationQuote,
		RFQStatus:     techfix.StatusPending,
		QuotationProducts: []techfix.QuotationProduct{
			{ProductID: 1, Quantity: 3, Price: 12.50},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/20", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("POST /quotations/20/approve", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&approved, 1)
	})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&deltas); err != nil {
			t.Errorf("decode: %v", err)
		}
	})
	svc := quotationService(t, mux)

	res, err := svc.Approve(ctxWith(adminUser), 20)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if atomic.LoadInt64(&approved) != 1 {
		t.Fatalf("expected approve call")
	}
	if res.Quotation.RFQStatus != techfix.StatusApproved {
		t.Fatalf("expected approved status, got %v", res.Quotation.RFQStatus)
	}
	if len(deltas) != 1 || deltas[0].ProductID != 1 || deltas[0].QuantityToAdd != 3 {
		t.Fatalf("expected restock of +3 for product 1, got %+v", deltas)
	}
}

func TestApproveRequestIssuesNoRestock(t *testing.T) {
	var inventoryCalls int64
	rfq := *pendingRFQ()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/10", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(rfq); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("POST /quotations/10/approve", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&inventoryCalls, 1)
	})
	svc := quotationService(t, mux)

	if _, err := svc.Approve(ctxWith(adminUser), 10); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if atomic.LoadInt64(&inventoryCalls) != 0 {
		t.Fatalf("approving a request must not touch inventory")
	}
}

func TestApproveAlreadyResolved(t *testing.T) {
	var approveCalls int64
	done := techfix.Quotation{ID: 21, QuotationType: techfix.QuotationQuote, RFQStatus: techfix.StatusApproved}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/21", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(done); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("POST /quotations/21/approve", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&approveCalls, 1)
	})
	svc := quotationService(t, mux)

	if _, err := svc.Approve(ctxWith(adminUser), 21); err != ErrAlreadyResolved {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if atomic.LoadInt64(&approveCalls) != 0 {
		t.Fatalf("no approve call expected for a resolved quotation")
	}
}

func TestApproveRestockFailureIsWarning(t *testing.T) {
	quote := techfix.Quotation{
		ID:                22,
		QuotationType:     techfix.QuotationQuote,
		RFQStatus:         techfix.StatusPending,
		QuotationProducts: []techfix.QuotationProduct{{ProductID: 1, Quantity: 2, Price: 5}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/22", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("POST /quotations/22/approve", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	svc := quotationService(t, mux)

	res, err := svc.Approve(ctxWith(adminUser), 22)
	if err != nil {
		t.Fatalf("approval should stand despite restock failure, got %v", err)
	}
	if res.InventoryWarning == nil {
		t.Fatalf("expected restock warning")
	}
}

func TestDeclineNoStockMovement(t *testing.T) {
	var inventoryCalls, declined int64
	quote := techfix.Quotation{
		ID:                23,
		QuotationType:     techfix.QuotationQuote,
		RFQStatus:         techfix.StatusPending,
		QuotationProducts: []techfix.QuotationProduct{{ProductID: 1, Quantity: 2, Price: 5}},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/23", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("POST /quotations/23/decline", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&declined, 1)
	})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&inventoryCalls, 1)
	})
	svc := quotationService(t, mux)

	q, err := svc.Decline(ctxWith(adminUser), 23)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if q.RFQStatus != techfix.StatusDeclined {
		t.Fatalf("expected declined status, got %v", q.RFQStatus)
	}
	if atomic.LoadInt64(&declined) != 1 || atomic.LoadInt64(&inventoryCalls) != 0 {
		t.Fatalf("decline must not touch inventory (decline=%d inventory=%d)", declined, inventoryCalls)
	}
}

func TestListFiltersForSupplier(t *testing.T) {
	all := []techfix.Quotation{
		{ID: 1, SupplierID: 2},
		{ID: 2, SupplierID: 99},
		{ID: 3, SupplierID: 2},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(all); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	svc := quotationService(t, mux)

	adminList, err := svc.List(ctxWith(adminUser))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(adminList) != 3 {
		t.Fatalf("admin should see all quotations, got %d", len(adminList))
	}

	supplierList, err := svc.List(ctxWith(supplierUser))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(supplierList) != 2 {
		t.Fatalf("supplier should only see own quotations, got %d", len(supplierList))
	}
	for _, q := range supplierList {
		if q.SupplierID != supplierUser.ID {
			t.Errorf("leaked quotation %d for supplier %d", q.ID, q.SupplierID)
		}
	}
}

func TestViewResolvesCounterparts(t *testing.T) {
	linked := int64(10)
	rfq := *pendingRFQ()
	quote := techfix.Quotation{ID: 20, QuotationType: techfix.QuotationQuote, LinkedQuotationID: &linked}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/10", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(rfq); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("GET /quotations/20", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(quote); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("GET /quotations/rfq/10/quotes", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode([]techfix.Quotation{quote}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	svc := quotationService(t, mux)

	d, err := svc.View(context.Background(), 10)
	if err != nil {
		t.Fatalf("view rfq: %v", err)
	}
	if len(d.LinkedQuotes) != 1 || d.LinkedQuotes[0].ID != 20 {
		t.Fatalf("expected linked quote, got %+v", d.LinkedQuotes)
	}

	d, err = svc.View(context.Background(), 20)
	if err != nil {
		t.Fatalf("view quote: %v", err)
	}
	if d.SourceRFQ == nil || d.SourceRFQ.ID != 10 {
		t.Fatalf("expected source RFQ, got %+v", d.SourceRFQ)
	}
}

func TestViewRFQWithNoQuotesYet(t *testing.T) {
	rfq := *pendingRFQ()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /quotations/10", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(rfq); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("GET /quotations/rfq/10/quotes", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	svc := quotationService(t, mux)

	d, err := svc.View(context.Background(), 10)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(d.LinkedQuotes) != 0 {
		t.Fatalf("expected no quotes, got %d", len(d.LinkedQuotes))
	}
}
