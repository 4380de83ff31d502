package rules

import (
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
)

const (
	FreeLikesPerDay  = 5
	MatchProbability = 0.2
	SwipeThreshold   = 100.0
)

// Unlimited is the limit value meaning "no daily cap".
const Unlimited = 0

// DailyLikeLimit returns the per-day like cap for a tier; paid tiers are Unlimited.
func DailyLikeLimit(tier enums.SubscriptionTier, freeLimit int) int {
	if tier.IsPaid() {
		return Unlimited
	}
	if freeLimit <= 0 {
		freeLimit = FreeLikesPerDay
	}
	return freeLimit
}

func DayKey(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format("2006-01-02")
}

func NextResetAt(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return next.UTC()
}

func LoadLocation(name string) (*time.Location, string) {
	if name == "" {
		return time.UTC, "UTC"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, "UTC"
	}
	return loc, name
}
