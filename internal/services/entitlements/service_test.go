package entitlements

import (
	"context"
	"errors"
	"testing"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/users"
)

func TestTierDefaultsToFree(t *testing.T) {
	svc := NewService(users.NewMemoryStore())

	tier, err := svc.Tier(context.Background(), "missing")
	if err != nil {
		t.Fatalf("tier: %v", err)
	}
	if tier != enums.TierFree {
		t.Fatalf("unexpected tier: got %s want %s", tier, enums.TierFree)
	}

	if _, err := svc.Tier(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSubscribeUpgradesTier(t *testing.T) {
	store := users.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	u, err := store.Create(ctx, model.User{Name: "Isabella", Email: "isa@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	plan, err := svc.Subscribe(ctx, u.ID, "GOLD")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if plan.ID != enums.TierGold || !plan.Popular {
		t.Fatalf("unexpected plan: %+v", plan)
	}

	tier, err := svc.Tier(ctx, u.ID)
	if err != nil {
		t.Fatalf("tier: %v", err)
	}
	if !tier.IsPaid() {
		t.Fatalf("expected paid tier after subscribe, got %s", tier)
	}
}

func TestSubscribeRejectsUnknownPlan(t *testing.T) {
	store := users.NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()
	u, _ := store.Create(ctx, model.User{Name: "Aisha"})

	for _, id := range []string{"free", "diamond", ""} {
		if _, err := svc.Subscribe(ctx, u.ID, id); !errors.Is(err, ErrUnknownPlan) {
			t.Fatalf("expected ErrUnknownPlan for %q, got %v", id, err)
		}
	}
	if _, err := svc.Subscribe(ctx, "ghost", "plus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlansAreCopies(t *testing.T) {
	svc := NewService(nil)
	plans := svc.Plans()
	if len(plans) != 3 {
		t.Fatalf("unexpected plan count: %d", len(plans))
	}
	plans[0].Features[0] = "mutated"
	if svc.Plans()[0].Features[0] == "mutated" {
		t.Fatalf("plans must not share backing arrays")
	}
	if plans[0].Price != 1.99 || plans[2].Price != 20.99 {
		t.Fatalf("unexpected prices: %v %v", plans[0].Price, plans[2].Price)
	}
}
