package techfix

import (
	"context"
	"fmt"
	"net/http"
)

// CreatePurchase creates a purchase record from a list of items. The backend
// creates the purchase and its items atomically; the corresponding inventory
// decrement is a separate call the workflow layer issues afterwards.
func (c *Client) CreatePurchase(ctx context.Context, req PurchaseRequest) (*Purchase, error) {
	var out Purchase
	if err := c.doRequest(ctx, http.MethodPost, "/purchases", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Purchases lists every purchase record.
func (c *Client) Purchases(ctx context.Context) ([]Purchase, error) {
	var out []Purchase
	if err := c.doRequest(ctx, http.MethodGet, "/purchases", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Purchase fetches one purchase by id.
func (c *Client) Purchase(ctx context.Context, id int64) (*Purchase, error) {
	var out Purchase
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/purchases/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PurchasesByUser lists the purchases made by one user.
func (c *Client) PurchasesByUser(ctx context.Context, userID int64) ([]Purchase, error) {
	var out []Purchase
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/purchases/user/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
