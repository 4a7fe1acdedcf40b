package techfix

import (
	"context"
	"fmt"
	"net/http"
)

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.doRequest(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches one product by id.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct registers a new catalog entry.
func (c *Client) CreateProduct(ctx context.Context, p Product) (*Product, error) {
	var out Product
	if err := c.doRequest(ctx, http.MethodPost, "/products", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct replaces the editable fields of a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, p Product) (*Product, error) {
	var out Product
	if err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// ProductsBySupplier lists the catalog entries owned by one supplier.
func (c *Client) ProductsBySupplier(ctx context.Context, supplierID int64) ([]Product, error) {
	var out []Product
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/supplier/%d/products", supplierID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
