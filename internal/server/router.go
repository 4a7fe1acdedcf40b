// Package server assembles the HTTP surface: routes, middleware chain and
// health endpoints.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/handlers"
	"github.com/diewo77/techfix-admin/internal/httpx"
	"github.com/diewo77/techfix-admin/internal/middleware"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
	"github.com/diewo77/techfix-admin/internal/workflow"
)

// Deps carries the shared components the router wires into handlers.
type Deps struct {
	Client   *techfix.Client
	Sessions *session.Provider
	Carts    cart.Store
	Log      *zap.Logger
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	mux := http.NewServeMux()

	authGate := policy.NewAuthGate()
	purchaseSvc := workflow.NewPurchaseService(d.Client, d.Carts, d.Log)
	quotationSvc := workflow.NewQuotationService(d.Client, authGate, d.Log)

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// Lightweight upstream probe; a failing backend degrades, it does
		// not take this process down.
		if _, err := d.Client.Products(r.Context()); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	// Auth endpoints (public)
	authHandler := handlers.NewAuthHandler(d.Client, d.Sessions)
	authHandler.Register(mux)

	requireAuth := func(h http.HandlerFunc) http.Handler {
		return session.RequireAuth(h)
	}

	// Catalog
	ph := handlers.NewProductHandler(d.Client, authGate, purchaseSvc)
	mux.Handle("/products", requireAuth(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/products/view", requireAuth(ph.Detail))
	mux.Handle("/products/update", requireAuth(ph.Update))
	mux.Handle("/products/delete", requireAuth(ph.Delete))
	mux.Handle("/products/buy", requireAuth(ph.Buy))

	// Cart
	ch := handlers.NewCartHandler(d.Client, d.Carts, purchaseSvc)
	mux.Handle("/cart", requireAuth(ch.View))
	mux.Handle("/cart/add", requireAuth(ch.Add))
	mux.Handle("/cart/clear", requireAuth(ch.Clear))
	mux.Handle("/cart/checkout", requireAuth(ch.Checkout))

	// Suppliers
	sh := handlers.NewSupplierHandler(d.Client)
	mux.Handle("/suppliers", requireAuth(sh.List))
	mux.Handle("/suppliers/view", requireAuth(sh.Detail))

	// Purchases
	purh := handlers.NewPurchaseHandler(d.Client, authGate)
	mux.Handle("/purchases", requireAuth(purh.List))
	mux.Handle("/purchases/view", requireAuth(purh.Detail))

	// Quotations
	qh := handlers.NewQuotationHandler(d.Client, authGate, quotationSvc)
	mux.Handle("/quotations", requireAuth(qh.List))
	mux.Handle("/quotations/view", requireAuth(qh.Detail))
	mux.Handle("/quotations/new", requireAuth(qh.NewRFQ))
	mux.Handle("/quotations/submit", requireAuth(qh.SubmitQuote))
	mux.Handle("/quotations/approve", requireAuth(qh.Approve))
	mux.Handle("/quotations/decline", requireAuth(qh.Decline))

	// Inventory administration
	ih := handlers.NewInventoryHandler(d.Client, authGate)
	mux.Handle("/inventory", requireAuth(ih.Overview))
	mux.Handle("/inventory/changes", requireAuth(ih.Changes))
	mux.Handle("/inventory/purchase-history", requireAuth(ih.PurchaseHistory))
	mux.Handle("/inventory/add-stock", requireAuth(ih.AddStock))

	// Static assets
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Landing / dashboard
	dh := handlers.NewDashboardHandler(d.Client, d.Carts)
	mux.HandleFunc("/", dh.Home)

	return middleware.Prefs(d.Sessions.Middleware(withRecover(withLogging(d.Log, mux), d.Log)))
}

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func withRecover(next http.Handler, log *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
