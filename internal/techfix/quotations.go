package techfix

import (
	"context"
	"fmt"
	"net/http"
)

// Quotations lists every quotation (RFQs and quotes alike).
func (c *Client) Quotations(ctx context.Context) ([]Quotation, error) {
	var out []Quotation
	if err := c.doRequest(ctx, http.MethodGet, "/quotations", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Quotation fetches one quotation by id.
func (c *Client) Quotation(ctx context.Context, id int64) (*Quotation, error) {
	var out Quotation
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/quotations/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRFQ persists a new request-type quotation.
func (c *Client) CreateRFQ(ctx context.Context, q NewQuotation) (*Quotation, error) {
	var out Quotation
	if err := c.doRequest(ctx, http.MethodPost, "/quotations/rfq", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitQuote persists a quote-type quotation linked to an RFQ.
func (c *Client) SubmitQuote(ctx context.Context, q NewQuotation) (*Quotation, error) {
	var out Quotation
	if err := c.doRequest(ctx, http.MethodPost, "/quotations/submit-quote", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuotesLinkedToRFQ lists the quotes submitted against an RFQ. A 404 means
// no quotes have been submitted yet and is not an error.
func (c *Client) QuotesLinkedToRFQ(ctx context.Context, rfqID int64) ([]Quotation, error) {
	var out []Quotation
	err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/quotations/rfq/%d/quotes", rfqID), nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveQuotation marks a quotation approved.
func (c *Client) ApproveQuotation(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/quotations/%d/approve", id), nil, nil)
}

// DeclineQuotation marks a quotation declined.
func (c *Client) DeclineQuotation(ctx context.Context, id int64) error {
	return c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/quotations/%d/decline", id), nil, nil)
}
