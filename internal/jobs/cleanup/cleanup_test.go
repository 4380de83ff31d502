package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePurger struct {
	cutoff time.Time
	stats  PurgeStats
	err    error
}

func (f *fakePurger) Purge(_ context.Context, cutoff time.Time) (PurgeStats, error) {
	f.cutoff = cutoff
	return f.stats, f.err
}

type fakeEvictor struct {
	ttl    time.Duration
	closed int
}

func (f *fakeEvictor) EvictIdle(ttl time.Duration) int {
	f.ttl = ttl
	return f.closed
}

func TestRunPurgesOlderThanRetention(t *testing.T) {
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	purger := &fakePurger{stats: PurgeStats{QuotaRows: 3, EventRows: 10}}
	evictor := &fakeEvictor{closed: 2}

	job := New(purger, evictor, 72*time.Hour, 15*time.Minute, nil)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run cleanup job: %v", err)
	}
	if want := now.Add(-72 * time.Hour); !purger.cutoff.Equal(want) {
		t.Fatalf("unexpected cutoff: got %v want %v", purger.cutoff, want)
	}
	if evictor.ttl != 15*time.Minute {
		t.Fatalf("unexpected idle ttl: %s", evictor.ttl)
	}
}

func TestRunDefaultsAndNilPurger(t *testing.T) {
	evictor := &fakeEvictor{}
	job := New(nil, evictor, 0, 0, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run without purger: %v", err)
	}
	if evictor.ttl != 30*time.Minute {
		t.Fatalf("unexpected default idle ttl: %s", evictor.ttl)
	}
	if job.quotaRetention != 7*24*time.Hour {
		t.Fatalf("unexpected default retention: %s", job.quotaRetention)
	}
}

func TestRunWrapsPurgeError(t *testing.T) {
	boom := errors.New("db down")
	job := New(&fakePurger{err: boom}, nil, time.Hour, time.Minute, nil)
	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped purge error, got %v", err)
	}
}

func TestStartSchedulesJob(t *testing.T) {
	job := New(nil, &fakeEvictor{}, time.Hour, time.Minute, nil)
	sched, err := job.Start(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(sched.Jobs()) != 1 {
		t.Fatalf("unexpected job count: %d", len(sched.Jobs()))
	}
	if err := sched.Shutdown(); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
