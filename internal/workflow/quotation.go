package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/policy"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

// QuotationService drives the RFQ lifecycle: an admin requests a quotation
// from a supplier, the supplier answers with a priced quote linked to the
// request, and the admin approves (restocking) or declines it.
type QuotationService struct {
	client *techfix.Client
	auth   *policy.AuthGate
	log    *zap.Logger
}

func NewQuotationService(client *techfix.Client, auth *policy.AuthGate, log *zap.Logger) *QuotationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuotationService{client: client, auth: auth, log: log}
}

// Line is one product line of a quotation being composed.
type Line struct {
	ProductID int64
	Quantity  int
	Price     float64
}

// Detail is a quotation together with its counterpart documents: the quotes
// submitted against it when it is a request, or the originating request when
// it is a quote.
type Detail struct {
	Quotation    *techfix.Quotation
	LinkedQuotes []techfix.Quotation
	SourceRFQ    *techfix.Quotation
}

// ApproveResult reports an approval. InventoryWarning is non-nil when the
// quotation was approved but the restock did not go through.
type ApproveResult struct {
	Quotation        *techfix.Quotation
	InventoryWarning error
}

// List returns the quotations visible to the acting user: all of them for an
// admin, only their own for a supplier.
func (s *QuotationService) List(ctx context.Context) ([]techfix.Quotation, error) {
	user := session.UserFrom(ctx)
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	all, err := s.client.Quotations(ctx)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return all, nil
	}
	var own []techfix.Quotation
	for _, q := range all {
		if q.SupplierID == user.ID {
			own = append(own, q)
		}
	}
	return own, nil
}

// View loads a quotation and resolves its counterparts in both directions.
// A request with no quotes yet is not an error.
func (s *QuotationService) View(ctx context.Context, id int64) (*Detail, error) {
	q, err := s.client.Quotation(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Quotation: q}
	if q.IsRequest() {
		d.LinkedQuotes, err = s.client.QuotesLinkedToRFQ(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if q.LinkedQuotationID != nil {
		d.SourceRFQ, err = s.client.Quotation(ctx, *q.LinkedQuotationID)
		if err != nil {
			return nil, err
		}
	}
	return d, nil
}

// CreateRFQ creates a request-type quotation addressed to a supplier. Lines
// carry quantities only; pricing is the supplier's answer.
func (s *QuotationService) CreateRFQ(ctx context.Context, supplierID int64, notes string, lines []Line) (*techfix.Quotation, error) {
	if err := s.auth.Authorize(ctx, gate.ActionCreate, policy.ResourceQuotation, nil); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	user := session.UserFrom(ctx)

	q := techfix.NewQuotation{
		AdminID:       user.ID,
		SupplierID:    supplierID,
		QuotationType: techfix.QuotationRequest,
		Notes:         notes,
	}
	for _, l := range lines {
		q.QuotationProducts = append(q.QuotationProducts, techfix.QuotationProduct{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return s.client.CreateRFQ(ctx, q)
}

// SubmitQuote answers an RFQ with a priced quote. A request takes exactly one
// quote, and every line of the request must be priced above zero; nothing is
// sent until both hold.
func (s *QuotationService) SubmitQuote(ctx context.Context, rfq *techfix.Quotation, prices map[int64]float64) (*techfix.Quotation, error) {
	if rfq.LinkedQuotationID != nil {
		return nil, ErrAlreadyQuoted
	}
	for _, p := range rfq.QuotationProducts {
		if prices[p.ProductID] <= 0 {
			return nil, ErrInvalidPrices
		}
	}
	if err := s.auth.Authorize(ctx, gate.ActionSubmit, policy.ResourceQuotation, rfq); err != nil {
		return nil, err
	}
	user := session.UserFrom(ctx)

	linked := rfq.ID
	q := techfix.NewQuotation{
		AdminID:           rfq.AdminID,
		SupplierID:        user.ID,
		QuotationType:     techfix.QuotationQuote,
		LinkedQuotationID: &linked,
	}
	for _, p := range rfq.QuotationProducts {
		q.QuotationProducts = append(q.QuotationProducts, techfix.QuotationProduct{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Price:     prices[p.ProductID],
		})
	}
	return s.client.SubmitQuote(ctx, q)
}

// Approve marks a pending quotation approved. Approving a quote restocks the
// quoted quantities; when that follow-up fails the approval stands and the
// failure is reported as a warning.
func (s *QuotationService) Approve(ctx context.Context, id int64) (*ApproveResult, error) {
	if err := s.auth.Authorize(ctx, gate.ActionApprove, policy.ResourceQuotation, nil); err != nil {
		return nil, err
	}
	q, err := s.client.Quotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.RFQStatus != techfix.StatusPending {
		return nil, ErrAlreadyResolved
	}
	if err := s.client.ApproveQuotation(ctx, q.ID); err != nil {
		return nil, err
	}
	q.RFQStatus = techfix.StatusApproved

	result := &ApproveResult{Quotation: q}
	if q.IsRequest() {
		return result, nil
	}
	deltas := make([]techfix.InventoryUpdate, 0, len(q.QuotationProducts))
	for _, p := range q.QuotationProducts {
		deltas = append(deltas, techfix.InventoryUpdate{
			ProductID:     p.ProductID,
			QuantityToAdd: p.Quantity,
		})
	}
	if err := s.client.BulkUpdateInventory(ctx, deltas); err != nil {
		s.log.Warn("restock failed after approval",
			zap.Int64("quotation_id", q.ID),
			zap.Error(err))
		result.InventoryWarning = err
	}
	return result, nil
}

// Decline marks a pending quotation declined. No stock movement occurs.
func (s *QuotationService) Decline(ctx context.Context, id int64) (*techfix.Quotation, error) {
	if err := s.auth.Authorize(ctx, gate.ActionDecline, policy.ResourceQuotation, nil); err != nil {
		return nil, err
	}
	q, err := s.client.Quotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.RFQStatus != techfix.StatusPending {
		return nil, ErrAlreadyResolved
	}
	if err := s.client.DeclineQuotation(ctx, q.ID); err != nil {
		return nil, err
	}
	q.RFQStatus = techfix.StatusDeclined
	return q, nil
}
