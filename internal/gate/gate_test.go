package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/techfix-admin/internal/gate"
)

// mockPolicy is a simple policy for testing with uint user type.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ uint, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestGate_Authorize_NoUser(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), 0, gate.ActionView, "test", nil)
	if err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.NewGate[uint]()

	err := g.Authorize(context.Background(), 1, gate.ActionView, "unknown", nil)
	if err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize_AllowedAndDenied(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("open", &mockPolicy{allowAll: true})
	g.Register("closed", &mockPolicy{allowAll: false})

	if err := g.Authorize(context.Background(), 1, gate.ActionView, "open", nil); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if err := g.Authorize(context.Background(), 1, gate.ActionView, "closed", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_PolicyFunc(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("fn", gate.PolicyFunc[uint](func(_ context.Context, user uint, action gate.Action, _ any) bool {
		return action == gate.ActionView
	}))

	if !g.Can(context.Background(), 1, gate.ActionView, "fn", nil) {
		t.Error("expected view to be allowed")
	}
	if g.Can(context.Background(), 1, gate.ActionDelete, "fn", nil) {
		t.Error("expected delete to be denied")
	}
}
