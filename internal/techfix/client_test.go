package techfix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second, nil)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth, gotReqID string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Errorf("write: %v", err)
		}
	})

	ctx := WithToken(context.Background(), "tok-123")
	if _, err := c.Products(ctx); err != nil {
		t.Fatalf("products: %v", err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotReqID == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestNoTokenNoAuthHeader(t *testing.T) {
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Errorf("write: %v", err)
		}
	})
	if _, err := c.Products(context.Background()); err != nil {
		t.Fatalf("products: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestRequestErrorCarriesStatusAndMessage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		if _, err := w.Write([]byte(`{"message":"duplicate product"}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	})
	_, err := c.CreateProduct(context.Background(), Product{Name: "X"})
	if err == nil {
		t.Fatalf("expected error")
	}
	re, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("expected RequestError, got %T: %v", err, err)
	}
	if re.Status != http.StatusConflict || re.Message != "duplicate product" {
		t.Fatalf("unexpected error contents: %+v", re)
	}
}

func TestRequestErrorWithoutBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.Product(context.Background(), 1)
	re, ok := err.(*RequestError)
	if !ok {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if re.Status != http.StatusInternalServerError || re.Message != "" {
		t.Fatalf("unexpected error contents: %+v", re)
	}
	if re.Error() != "api error 500" {
		t.Fatalf("unexpected error text: %s", re.Error())
	}
}

func TestBulkUpdatePayloadShape(t *testing.T) {
	var got []InventoryUpdate
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/inventory/bulk-update" {
			t.Errorf("unexpected route %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	updates := []InventoryUpdate{{ProductID: 1, QuantityToAdd: -2}, {ProductID: 2, QuantityToAdd: -1}}
	if err := c.BulkUpdateInventory(context.Background(), updates); err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if len(got) != 2 || got[0].QuantityToAdd != -2 || got[1].QuantityToAdd != -1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestLinkedQuotes404MeansEmpty(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	quotes, err := c.QuotesLinkedToRFQ(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if len(quotes) != 0 {
		t.Fatalf("expected empty list, got %d", len(quotes))
	}
}

func TestLoginResultUser(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if _, err := w.Write([]byte(`{"id":7,"username":"ana","email":"a@b","role":"Admin","token":"t0"}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	})
	res, err := c.Login(context.Background(), "ana", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "t0" {
		t.Fatalf("unexpected token %q", res.Token)
	}
	u := res.User()
	if u.ID != 7 || !u.IsAdmin() {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestSupplierIDInt(t *testing.T) {
	p := Product{SupplierID: "12"}
	if p.SupplierIDInt() != 12 {
		t.Fatalf("expected 12")
	}
	if (Product{SupplierID: "abc"}).SupplierIDInt() != 0 {
		t.Fatalf("expected 0 for malformed id")
	}
}
