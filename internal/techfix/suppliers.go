package techfix

import (
	"context"
	"fmt"
	"net/http"
)

// A supplier is a backend user with the Supplier role; the API exposes the
// directory under its own resource path.

// Suppliers lists the supplier directory.
func (c *Client) Suppliers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.doRequest(ctx, http.MethodGet, "/Supplier", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Supplier fetches one supplier profile by id.
func (c *Client) Supplier(ctx context.Context, id int64) (*User, error) {
	var out User
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/Supplier/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
