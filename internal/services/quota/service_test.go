package quota

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
)

func TestFreeTierAllowsFiveThenDenies(t *testing.T) {
	gate := NewGate(NewLocalStore(kvstore.NewMemory(), nil), Config{}, nil)
	ctx := context.Background()
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		d, err := gate.TryConsume(ctx, "u1", enums.TierFree, today)
		if err != nil {
			t.Fatalf("consume #%d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("consume #%d denied", i)
		}
		if d.Used != i || d.LikesLeft != 5-i {
			t.Fatalf("unexpected decision #%d: used=%d left=%d", i, d.Used, d.LikesLeft)
		}
	}

	d, err := gate.TryConsume(ctx, "u1", enums.TierFree, today)
	if err != nil {
		t.Fatalf("consume #6: %v", err)
	}
	if d.Allowed {
		t.Fatalf("sixth like must be denied")
	}
	if d.Used != 5 {
		t.Fatalf("denied consume must not increment: used=%d", d.Used)
	}
}

func TestDayRolloverResetsCount(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	if err := kv.Set(ctx, kvstore.KeyQuota, `{"date":"2026-02-07","count":5,"user_id":"u1"}`); err != nil {
		t.Fatalf("seed quota: %v", err)
	}

	gate := NewGate(NewLocalStore(kv, nil), Config{}, nil)
	today := time.Date(2026, 2, 8, 0, 0, 1, 0, time.UTC)

	d, err := gate.TryConsume(ctx, "u1", enums.TierFree, today)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !d.Allowed || d.Used != 1 {
		t.Fatalf("unexpected decision after rollover: allowed=%v used=%d", d.Allowed, d.Used)
	}

	raw, _, _ := kv.Get(ctx, kvstore.KeyQuota)
	want := `{"date":"2026-02-08","count":1,"user_id":"u1"}`
	if raw != want {
		t.Fatalf("unexpected stored record: got %s want %s", raw, want)
	}
}

func TestUnlimitedTiersNeverDeny(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	for _, tier := range []enums.SubscriptionTier{enums.TierPlus, enums.TierGold, enums.TierPlatinum} {
		gate := NewGate(NewLocalStore(kvstore.NewMemory(), nil), Config{}, nil)
		for i := 0; i < 1000; i++ {
			d, err := gate.TryConsume(ctx, "u1", tier, today)
			if err != nil {
				t.Fatalf("tier %s consume #%d: %v", tier, i+1, err)
			}
			if !d.Allowed {
				t.Fatalf("tier %s denied at #%d", tier, i+1)
			}
			if d.LikesLeft != -1 {
				t.Fatalf("tier %s: unexpected likes_left %d", tier, d.LikesLeft)
			}
		}
		snap, err := gate.Snapshot(ctx, "u1", tier)
		if err != nil {
			t.Fatalf("snapshot: %v", err)
		}
		if snap.Used != 1000 || !snap.Unlimited {
			t.Fatalf("unlimited tiers still count likes: %+v", snap)
		}
	}
}

func TestMalformedRecordCountsAsZero(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	for _, raw := range []string{"{not json", "", `{"date":"2026-02-08","count":-4}`, `[]`} {
		kv := kvstore.NewMemory()
		if err := kv.Set(ctx, kvstore.KeyQuota, raw); err != nil {
			t.Fatalf("seed: %v", err)
		}
		gate := NewGate(NewLocalStore(kv, nil), Config{}, nil)
		d, err := gate.TryConsume(ctx, "u1", enums.TierFree, today)
		if err != nil {
			t.Fatalf("consume over %q: %v", raw, err)
		}
		if !d.Allowed || d.Used != 1 {
			t.Fatalf("record %q: allowed=%v used=%d", raw, d.Allowed, d.Used)
		}
	}
}

func TestRecordOfAnotherUserCountsAsZero(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	_ = kv.Set(ctx, kvstore.KeyQuota, `{"date":"2026-02-08","count":5,"user_id":"someone-else"}`)

	gate := NewGate(NewLocalStore(kv, nil), Config{}, nil)
	d, err := gate.TryConsume(ctx, "u1", enums.TierFree, time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if !d.Allowed || d.Used != 1 {
		t.Fatalf("foreign record must not count: allowed=%v used=%d", d.Allowed, d.Used)
	}
}

func TestGateInUsesRequestTimezone(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	gate := NewGate(NewLocalStore(kv, nil), Config{DefaultTimezone: "UTC"}, nil)

	// 03:30 UTC on Feb 9 is still Feb 8 in New York.
	at := time.Date(2026, 2, 9, 3, 30, 0, 0, time.UTC)
	d, err := gate.In("America/New_York").TryConsume(ctx, "u1", enums.TierFree, at)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got := d.ResetAt; !got.Equal(time.Date(2026, 2, 9, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reset_at: %s", got.Format(time.RFC3339))
	}
	raw, _, _ := kv.Get(ctx, kvstore.KeyQuota)
	if raw != `{"date":"2026-02-08","count":1,"user_id":"u1"}` {
		t.Fatalf("unexpected stored record: %s", raw)
	}

	if g := gate.In("Not/AZone"); g.Timezone() != "UTC" {
		t.Fatalf("unknown timezone must keep default, got %s", g.Timezone())
	}
}

func TestSnapshotReportsLikesLeft(t *testing.T) {
	gate := NewGate(NewLocalStore(kvstore.NewMemory(), nil), Config{FreeLikesPerDay: 3}, nil)
	now := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return now }
	ctx := context.Background()

	if _, err := gate.TryConsume(ctx, "u1", enums.TierFree, now); err != nil {
		t.Fatalf("consume: %v", err)
	}
	snap, err := gate.Snapshot(ctx, "u1", enums.TierFree)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.LikesLeft != 2 || snap.Used != 1 || snap.Limit != 3 || snap.Unlimited {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !snap.ResetAt.Equal(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected reset_at: %s", snap.ResetAt)
	}
}

func TestConcurrentConsumeNeverExceedsLimit(t *testing.T) {
	gate := NewGate(NewLocalStore(kvstore.NewMemory(), nil), Config{}, nil)
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := gate.TryConsume(context.Background(), "u1", enums.TierFree, today)
			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := allowed.Load(); got != 5 {
		t.Fatalf("unexpected allowed count: got %d want 5", got)
	}
}

func TestTryConsumeValidation(t *testing.T) {
	gate := NewGate(nil, Config{}, nil)
	if _, err := gate.TryConsume(context.Background(), " ", enums.TierFree, time.Now()); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := gate.TryConsume(context.Background(), "u1", enums.TierFree, time.Now()); !errors.Is(err, ErrDependenciesNil) {
		t.Fatalf("expected ErrDependenciesNil, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) GetLikesUsed(context.Context, string, string) (int, error) {
	return 0, errors.New("store down")
}

func (failingStore) ConsumeLike(context.Context, string, string, string, int) (int, bool, error) {
	return 0, false, errors.New("store down")
}

func TestStoreFailureIsWrapped(t *testing.T) {
	gate := NewGate(failingStore{}, Config{}, nil)
	_, err := gate.TryConsume(context.Background(), "u1", enums.TierFree, time.Now())
	if err == nil {
		t.Fatalf("expected error from failing store")
	}
}

func TestSharedLocalStoreKeepsUsersApart(t *testing.T) {
	kv := kvstore.NewMemory()
	ctx := context.Background()
	gate := NewGate(NewSharedLocalStore(kv, nil), Config{}, nil)
	today := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if _, err := gate.TryConsume(ctx, "u1", enums.TierFree, today); err != nil {
			t.Fatalf("consume u1 #%d: %v", i+1, err)
		}
	}
	d, err := gate.TryConsume(ctx, "u2", enums.TierFree, today)
	if err != nil {
		t.Fatalf("consume u2: %v", err)
	}
	if !d.Allowed || d.Used != 1 {
		t.Fatalf("unexpected u2 decision: allowed=%v used=%d", d.Allowed, d.Used)
	}
	d, err = gate.TryConsume(ctx, "u1", enums.TierFree, today)
	if err != nil {
		t.Fatalf("consume u1 #6: %v", err)
	}
	if d.Allowed {
		t.Fatalf("u1 sixth like must be denied")
	}
	if _, ok, _ := kv.Get(ctx, kvstore.KeyQuota); ok {
		t.Fatalf("shared store must not write the device key")
	}
}
