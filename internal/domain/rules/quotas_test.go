package rules

import (
	"testing"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
)

func TestDayKeyUsesTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	utc := time.Date(2026, 2, 9, 3, 30, 0, 0, time.UTC)
	got := DayKey(utc, loc)
	want := "2026-02-08"
	if got != want {
		t.Fatalf("unexpected day key: got %s want %s", got, want)
	}
}

func TestDayKeyDefaultsToUTC(t *testing.T) {
	utc := time.Date(2026, 2, 8, 23, 59, 59, 0, time.UTC)
	if got := DayKey(utc, nil); got != "2026-02-08" {
		t.Fatalf("unexpected day key: got %s want %s", got, "2026-02-08")
	}
}

func TestNextResetAtUsesTimezone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	now := time.Date(2026, 2, 9, 3, 30, 0, 0, time.UTC) // 22:30 local, Feb 8
	got := NextResetAt(now, loc)
	want := time.Date(2026, 2, 9, 5, 0, 0, 0, time.UTC) // midnight local Feb 9
	if !got.Equal(want) {
		t.Fatalf("unexpected reset_at: got %s want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
	}
}

func TestDailyLikeLimitByTier(t *testing.T) {
	if got := DailyLikeLimit(enums.TierFree, 0); got != FreeLikesPerDay {
		t.Fatalf("unexpected free limit: got %d want %d", got, FreeLikesPerDay)
	}
	if got := DailyLikeLimit(enums.TierFree, 12); got != 12 {
		t.Fatalf("configured free limit ignored: got %d", got)
	}
	for _, tier := range []enums.SubscriptionTier{enums.TierPlus, enums.TierGold, enums.TierPlatinum} {
		if got := DailyLikeLimit(tier, 5); got != Unlimited {
			t.Fatalf("tier %s should be unlimited, got %d", tier, got)
		}
	}
}
