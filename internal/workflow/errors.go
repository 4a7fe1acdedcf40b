package workflow

import "errors"

var (
	// ErrNotAuthenticated is returned when a workflow needs an acting user
	// and the context carries none.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrEmptyCart is returned when checkout is attempted on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidPrices is returned when a quote submission carries a line
	// priced at zero or below. Nothing is sent to the API in that case.
	ErrInvalidPrices = errors.New("every line must have a positive price")
	// ErrNoLines is returned when a quotation is created without products.
	ErrNoLines = errors.New("at least one product line is required")
	// ErrAlreadyQuoted is returned when submitting a quote against a
	// request that already has one. A request takes a single quote.
	ErrAlreadyQuoted = errors.New("request already has a quote")
	// ErrAlreadyResolved is returned when approving or declining a
	// quotation that already left the pending state.
	ErrAlreadyResolved = errors.New("quotation already approved or declined")
)
