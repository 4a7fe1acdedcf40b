package techfix

import (
	"context"
	"fmt"
	"net/http"
)

// InventoryByProduct fetches the stock row for one product.
func (c *Client) InventoryByProduct(ctx context.Context, productID int64) (*Inventory, error) {
	var out Inventory
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/inventory/product/%d", productID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AllInventory lists every stock row.
func (c *Client) AllInventory(ctx context.Context) ([]Inventory, error) {
	var out []Inventory
	if err := c.doRequest(ctx, http.MethodGet, "/inventory/product/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInventory creates the initial stock row for a product.
func (c *Client) CreateInventory(ctx context.Context, inv Inventory) (*Inventory, error) {
	var out Inventory
	if err := c.doRequest(ctx, http.MethodPost, "/inventory", inv, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInventory applies one signed delta to a product's stock.
func (c *Client) UpdateInventory(ctx context.Context, productID int64, quantityToAdd int) (*Inventory, error) {
	body := struct {
		QuantityToAdd int `json:"quantityToAdd"`
	}{quantityToAdd}
	var out Inventory
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/inventory/product/%d", productID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkUpdateInventory applies a list of signed deltas in one request. The
// backend applies each entry independently; there is no all-or-nothing
// guarantee across entries.
func (c *Client) BulkUpdateInventory(ctx context.Context, updates []InventoryUpdate) error {
	return c.doRequest(ctx, http.MethodPut, "/inventory/bulk-update", updates, nil)
}

// InventoryChanges lists the audit trail for one product.
func (c *Client) InventoryChanges(ctx context.Context, productID int64) ([]InventoryChange, error) {
	var out []InventoryChange
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/inventory/changes/%d", productID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllInventoryChanges lists the audit trail across all products.
func (c *Client) AllInventoryChanges(ctx context.Context) ([]InventoryChange, error) {
	var out []InventoryChange
	if err := c.doRequest(ctx, http.MethodGet, "/inventory/changes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddStock records a supply delivery for a product (Supply audit reason).
func (c *Client) AddStock(ctx context.Context, req AddStockRequest) error {
	return c.doRequest(ctx, http.MethodPost, "/inventory/add-stock", req, nil)
}
