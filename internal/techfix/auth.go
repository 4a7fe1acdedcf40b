package techfix

import (
	"context"
	"net/http"
)

// RegisterUser creates a supplier account. The backend expects the numeric
// supplier role code on this endpoint even though profiles report roles as
// strings.
func (c *Client) RegisterUser(ctx context.Context, username, password, email, companyName string) error {
	req := RegisterRequest{
		Username:    username,
		Password:    password,
		Email:       email,
		CompanyName: companyName,
		Role:        registerRoleSupplier,
	}
	return c.doRequest(ctx, http.MethodPost, "/Auth/register", req, nil)
}

// Login exchanges credentials for a profile and a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	req := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{username, password}
	var out LoginResult
	if err := c.doRequest(ctx, http.MethodPost, "/Auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout invalidates the server-side session for the credential in ctx.
// Callers drop the local credential regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodPost, "/Auth/logout", nil, nil)
}

// Me resolves the credential in ctx to the current user profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.doRequest(ctx, http.MethodGet, "/Auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
