// Package workflow implements the multi-step procurement operations that
// span the TechFix API and the local cart: checkout, RFQ creation, quote
// submission and quote approval. Each step is one API call; when a follow-up
// side effect fails after the primary record was created, the primary
// result stands and the failure is reported as a warning rather than rolled
// back.
package workflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/diewo77/techfix-admin/internal/cart"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

// PurchaseService turns a local cart into a purchase record on the backend
// and keeps stock in sync.
type PurchaseService struct {
	client *techfix.Client
	carts  cart.Store
	log    *zap.Logger
}

func NewPurchaseService(client *techfix.Client, carts cart.Store, log *zap.Logger) *PurchaseService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseService{client: client, carts: carts, log: log}
}

// PurchaseResult is the outcome of a checkout. InventoryWarning is non-nil
// when the purchase was recorded but the stock decrement did not go through;
// the two may then disagree until corrected server-side.
type PurchaseResult struct {
	Purchase         *techfix.Purchase
	InventoryWarning error
}

// Checkout records the cart as a purchase, decrements stock by the purchased
// quantities and clears the local cart. The purchase is the source of truth:
// once it is created, later failures only produce a warning.
func (s *PurchaseService) Checkout(ctx context.Context) (*PurchaseResult, error) {
	user := session.UserFrom(ctx)
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	c, err := s.carts.Load(user.ID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}

	req := techfix.PurchaseRequest{UserID: user.ID}
	deltas := make([]techfix.InventoryUpdate, 0, len(c.Items))
	for _, item := range c.Items {
		req.PurchaseItems = append(req.PurchaseItems, techfix.PurchaseItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
		deltas = append(deltas, techfix.InventoryUpdate{
			ProductID:     item.ProductID,
			QuantityToAdd: -item.Quantity,
		})
	}

	purchase, err := s.client.CreatePurchase(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{Purchase: purchase}
	if err := s.client.BulkUpdateInventory(ctx, deltas); err != nil {
		s.log.Warn("stock decrement failed after purchase",
			zap.Int64("purchase_id", purchase.ID),
			zap.Error(err))
		result.InventoryWarning = err
	}

	if err := s.carts.Clear(user.ID); err != nil {
		s.log.Warn("cart clear failed after purchase",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
	}
	return result, nil
}

// BuyNow purchases a single product directly, bypassing the cart.
func (s *PurchaseService) BuyNow(ctx context.Context, p techfix.Product, quantity int) (*PurchaseResult, error) {
	user := session.UserFrom(ctx)
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 {
		quantity = 1
	}

	req := techfix.PurchaseRequest{
		UserID: user.ID,
		PurchaseItems: []techfix.PurchaseItemRequest{
			{ProductID: p.ID, Quantity: quantity, Price: p.Price},
		},
	}
	purchase, err := s.client.CreatePurchase(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &PurchaseResult{Purchase: purchase}
	deltas := []techfix.InventoryUpdate{{ProductID: p.ID, QuantityToAdd: -quantity}}
	if err := s.client.BulkUpdateInventory(ctx, deltas); err != nil {
		s.log.Warn("stock decrement failed after purchase",
			zap.Int64("purchase_id", purchase.ID),
			zap.Error(err))
		result.InventoryWarning = err
	}
	return result, nil
}
