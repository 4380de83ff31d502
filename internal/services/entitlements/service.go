package entitlements

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrUnknownPlan = errors.New("unknown subscription plan")
	ErrNotFound    = errors.New("user not found")
)

type Store interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	SetSubscription(ctx context.Context, id string, tier enums.SubscriptionTier) error
}

var catalogue = []model.Plan{
	{
		ID:    enums.TierPlus,
		Name:  "Roam Plus",
		Price: 1.99,
		Features: []string{
			"Match, chat & connect with other users",
			"Send unlimited daily Likes",
			"Unlimited Rewinds",
			"Roaming Love Mode",
			"Hide advertisements",
			"Go incognito",
		},
	},
	{
		ID:      enums.TierGold,
		Name:    "Roam Gold",
		Price:   10.99,
		Popular: true,
		Features: []string{
			"All Roam Plus features",
			"Weekly Super Likes",
			"1 Boost per month",
			"See who Likes You before you decide",
			"New Top Picks every day",
			"Priority customer support",
		},
	},
	{
		ID:    enums.TierPlatinum,
		Name:  "Roam Platinum",
		Price: 20.99,
		Features: []string{
			"All Roam Plus and Gold features",
			"Weekly First Impressions",
			"Prioritized Likes",
			"See the Likes you've sent in the last 7 days",
			"Unlimited Super Likes",
			"VIP customer support",
		},
	},
}

// Service resolves and changes a user's subscription tier.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Tier returns the user's tier. A nil store or an unknown user reads as free.
func (s *Service) Tier(ctx context.Context, userID string) (enums.SubscriptionTier, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrValidation
	}
	if s.store == nil {
		return enums.TierFree, nil
	}

	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return enums.TierFree, nil
		}
		return "", fmt.Errorf("resolve subscription tier: %w", err)
	}
	if _, ok := enums.ParseTier(string(u.Subscription)); !ok {
		return enums.TierFree, nil
	}
	return u.Subscription, nil
}

func (s *Service) Plans() []model.Plan {
	out := make([]model.Plan, 0, len(catalogue))
	for _, p := range catalogue {
		p.Features = append([]string(nil), p.Features...)
		out = append(out, p)
	}
	return out
}

func (s *Service) Plan(id string) (model.Plan, error) {
	tier, ok := enums.ParseTier(id)
	if !ok || !tier.IsPaid() {
		return model.Plan{}, ErrUnknownPlan
	}
	for _, p := range s.Plans() {
		if p.ID == tier {
			return p, nil
		}
	}
	return model.Plan{}, ErrUnknownPlan
}

// Subscribe switches the user to the plan. No payment is taken.
func (s *Service) Subscribe(ctx context.Context, userID, planID string) (model.Plan, error) {
	if strings.TrimSpace(userID) == "" {
		return model.Plan{}, ErrValidation
	}
	plan, err := s.Plan(planID)
	if err != nil {
		return model.Plan{}, err
	}
	if s.store == nil {
		return model.Plan{}, fmt.Errorf("entitlement store is nil")
	}

	if err := s.store.SetSubscription(ctx, userID, plan.ID); err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return model.Plan{}, ErrNotFound
		}
		return model.Plan{}, fmt.Errorf("set subscription: %w", err)
	}
	return plan, nil
}
