package enums

import "strings"

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierPlus     SubscriptionTier = "plus"
	TierGold     SubscriptionTier = "gold"
	TierPlatinum SubscriptionTier = "platinum"
)

func ParseTier(value string) (SubscriptionTier, bool) {
	switch SubscriptionTier(strings.ToLower(strings.TrimSpace(value))) {
	case TierFree:
		return TierFree, true
	case TierPlus:
		return TierPlus, true
	case TierGold:
		return TierGold, true
	case TierPlatinum:
		return TierPlatinum, true
	default:
		return "", false
	}
}

// IsPaid reports whether the tier is one of the subscription plans.
func (t SubscriptionTier) IsPaid() bool {
	switch t {
	case TierPlus, TierGold, TierPlatinum:
		return true
	default:
		return false
	}
}
