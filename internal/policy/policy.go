// Package policy wires the generic gate to the TechFix domain: which role
// may act on which resource. Handlers consult the gate before offering or
// attempting an action, so an unauthorized operation is blocked regardless
// of what the backend would answer.
package policy

import (
	"context"

	"github.com/diewo77/techfix-admin/internal/gate"
	"github.com/diewo77/techfix-admin/internal/session"
	"github.com/diewo77/techfix-admin/internal/techfix"
)

// Resource type names registered on the gate.
const (
	ResourceProduct   = "product"
	ResourceQuotation = "quotation"
	ResourceInventory = "inventory"
	ResourcePurchase  = "purchase"
)

// ProductPolicy: everyone authenticated may browse; catalog mutations are
// admin only.
type ProductPolicy struct{}

func (ProductPolicy) Can(_ context.Context, user *techfix.User, action gate.Action, _ any) bool {
	switch action {
	case gate.ActionView, gate.ActionList:
		return true
	case gate.ActionCreate, gate.ActionUpdate, gate.ActionDelete:
		return user.IsAdmin()
	}
	return false
}

// QuotationPolicy: admins run the RFQ side (create, approve, decline);
// suppliers may submit a quote only against a request-type quotation that
// names them.
type QuotationPolicy struct{}

func (QuotationPolicy) Can(_ context.Context, user *techfix.User, action gate.Action, resource any) bool {
	switch action {
	case gate.ActionView, gate.ActionList:
		return true
	case gate.ActionCreate, gate.ActionApprove, gate.ActionDecline:
		return user.IsAdmin()
	case gate.ActionSubmit:
		rfq, ok := resource.(*techfix.Quotation)
		if !ok || rfq == nil {
			return false
		}
		return user.Role == techfix.RoleSupplier && rfq.IsRequest() && rfq.SupplierID == user.ID
	}
	return false
}

// InventoryPolicy: stock administration (add stock, audit views) is admin
// only. The inventory deltas issued as purchase/approval side effects belong
// to those workflows, not to this resource.
type InventoryPolicy struct{}

func (InventoryPolicy) Can(_ context.Context, user *techfix.User, action gate.Action, _ any) bool {
	switch action {
	case gate.ActionView, gate.ActionList, gate.ActionCreate, gate.ActionUpdate:
		return user.IsAdmin()
	}
	return false
}

// PurchasePolicy: any authenticated user may buy and see their own history;
// the global history is admin only (handlers scope the listing).
type PurchasePolicy struct{}

func (PurchasePolicy) Can(_ context.Context, user *techfix.User, action gate.Action, _ any) bool {
	switch action {
	case gate.ActionCreate, gate.ActionView:
		return true
	case gate.ActionList:
		return user.IsAdmin()
	}
	return false
}

// AuthGate bundles the configured gate and resolves the acting user from the
// request context. Use this as the single authorization checkpoint.
type AuthGate struct {
	gate *gate.Gate[*techfix.User]
}

// NewAuthGate returns a gate with all domain policies registered.
func NewAuthGate() *AuthGate {
	g := gate.NewGate[*techfix.User]()
	g.Register(ResourceProduct, ProductPolicy{})
	g.Register(ResourceQuotation, QuotationPolicy{})
	g.Register(ResourceInventory, InventoryPolicy{})
	g.Register(ResourcePurchase, PurchasePolicy{})
	return &AuthGate{gate: g}
}

// Authorize checks whether the user in ctx may perform action on resource.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	return ag.gate.Authorize(ctx, session.UserFrom(ctx), action, resourceType, resource)
}

// Can is a convenience wrapper returning bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}
