package workflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

func testCartStore(t *testing.T) cart.Store {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	s, err := cart.NewGormStore(db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func testClient(t *testing.T, h http.Handler) *techfix.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return techfix.New(srv.URL, 2*time.Second, nil)
}

func buyerCtx() context.Context {
	return session.WithUser(context.Background(), &techfix.User{ID: 7, Username: "buyer", Role: techfix.RoleAdmin})
}

func TestCheckoutRecordsPurchaseAndDecrementsStock(t *testing.T) {
	var purchaseReq techfix.PurchaseRequest
	var deltas []techfix.InventoryUpdate

	mux := http.NewServeMux()
	mux.HandleFunc("POST /purchases", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&purchaseReq); err != nil {
			t.Errorf("decode purchase: %v", err)
		}
		if err := json.NewEncoder(w).Encode(techfix.Purchase{ID: 100, UserID: 7, TotalAmount: 25}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&deltas); err != nil {
			t.Errorf("decode deltas: %v", err)
		}
	})

	carts := testCartStore(t)
	svc := NewPurchaseService(testClient(t, mux), carts, nil)

	keyboard := techfix.Product{ID: 1, Name: "Keyboard", Price: 10}
	monitor := techfix.Product{ID: 2, Name: "Monitor", Price: 5}
	for _, p := range []techfix.Product{keyboard, keyboard, monitor} {
		if err := carts.Add(7, p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	res, err := svc.Checkout(buyerCtx())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if res.Purchase == nil || res.Purchase.ID != 100 {
		t.Fatalf("unexpected purchase %+v", res.Purchase)
	}
	if res.InventoryWarning != nil {
		t.Fatalf("unexpected warning: %v", res.InventoryWarning)
	}

	if purchaseReq.UserID != 7 || len(purchaseReq.PurchaseItems) != 2 {
		t.Fatalf("unexpected purchase request %+v", purchaseReq)
	}
	want := map[int64]int{1: -2, 2: -1}
	if len(deltas) != 2 {
		t.Fatalf("expected 2 deltas, got %d", len(deltas))
	}
	for _, d := range deltas {
		if want[d.ProductID] != d.QuantityToAdd {
			t.Errorf("delta for product %d: got %d, want %d", d.ProductID, d.QuantityToAdd, want[d.ProductID])
		}
	}

	c, err := carts.Load(7)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Empty() {
		t.Fatalf("expected cart cleared after checkout")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	var calls int64
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	})
	svc := NewPurchaseService(testClient(t, h), testCartStore(t), nil)

	if _, err := svc.Checkout(buyerCtx()); err != ErrEmptyCart {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if atomic.LoadInt64(&calls) != 0 {
		t.Fatalf("expected no API calls")
	}
}

func TestCheckoutRequiresUser(t *testing.T) {
	svc := NewPurchaseService(testClient(t, http.NewServeMux()), testCartStore(t), nil)
	if _, err := svc.Checkout(context.Background()); err != ErrNotAuthenticated {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCheckoutInventoryFailureIsWarning(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /purchases", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(techfix.Purchase{ID: 101}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	carts := testCartStore(t)
	svc := NewPurchaseService(testClient(t, mux), carts, nil)
	if err := carts.Add(7, techfix.Product{ID: 1, Name: "Keyboard", Price: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}

	res, err := svc.Checkout(buyerCtx())
	if err != nil {
		t.Fatalf("checkout should succeed despite stock failure, got %v", err)
	}
	if res.InventoryWarning == nil {
		t.Fatalf("expected inventory warning")
	}
	c, _ := carts.Load(7)
	if !c.Empty() {
		t.Fatalf("cart should still be cleared")
	}
}

func TestCheckoutPurchaseFailureKeepsCart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /purchases", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	carts := testCartStore(t)
	svc := NewPurchaseService(testClient(t, mux), carts, nil)
	if err := carts.Add(7, techfix.Product{ID: 1, Name: "Keyboard", Price: 10}); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.Checkout(buyerCtx()); err == nil {
		t.Fatalf("expected checkout to fail")
	}
	c, _ := carts.Load(7)
	if c.Empty() {
		t.Fatalf("cart must survive a failed purchase")
	}
}

func TestBuyNowSingleProduct(t *testing.T) {
	var purchaseReq techfix.PurchaseRequest
	var deltas []techfix.InventoryUpdate

	mux := http.NewServeMux()
	mux.HandleFunc("POST /purchases", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&purchaseReq); err != nil {
			t.Errorf("decode: %v", err)
		}
		if err := json.NewEncoder(w).Encode(techfix.Purchase{ID: 102}); err != nil {
			t.Errorf("encode: %v", err)
		}
	})
	mux.HandleFunc("PUT /inventory/bulk-update", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&deltas); err != nil {
			t.Errorf("decode: %v", err)
		}
	})

	svc := NewPurchaseService(testClient(t, mux), testCartStore(t), nil)
	res, err := svc.BuyNow(buyerCtx(), techfix.Product{ID: 3, Name: "Cable", Price: 2.5}, 1)
	if err != nil {
		t.Fatalf("buy now: %v", err)
	}
	if res.Purchase.ID != 102 {
		t.Fatalf("unexpected purchase %+v", res.Purchase)
	}
	if len(purchaseReq.PurchaseItems) != 1 || purchaseReq.PurchaseItems[0].ProductID != 3 {
		t.Fatalf("unexpected request %+v", purchaseReq)
	}
	if len(deltas) != 1 || deltas[0].QuantityToAdd != -1 {
		t.Fatalf("unexpected deltas %+v", deltas)
	}
}
