package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/metrics"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

type eventStoreStub struct {
	mu      sync.Mutex
	batches [][]pgrepo.EventWriteRecord
	err     error
}

func (s *eventStoreStub) InsertBatch(_ context.Context, events []pgrepo.EventWriteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]pgrepo.EventWriteRecord(nil), events...))
	return s.err
}

type swipeStoreStub struct {
	mu     sync.Mutex
	swipes []model.Swipe
	err    error
}

func (s *swipeStoreStub) Record(_ context.Context, sw model.Swipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.swipes = append(s.swipes, sw)
	return nil
}

func (s *swipeStoreStub) recorded() []model.Swipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Swipe(nil), s.swipes...)
}

func TestFlushWritesSwipesAndEvents(t *testing.T) {
	events := &eventStoreStub{}
	swipes := &swipeStoreStub{}
	svc := NewService(events, swipes, Config{MaxBatchSize: 2}, nil)
	at := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	svc.OnEvent(discovery.Event{Kind: discovery.EventCommit, UserID: "u1", SessionID: "s1",
		Candidate: model.Candidate{ID: "1"}, Direction: enums.DirectionRight, At: at,
		Quota: &quota.Decision{Allowed: true, Used: 1, LikesLeft: 4}})
	svc.OnEvent(discovery.Event{Kind: discovery.EventMatch, UserID: "u1", SessionID: "s1",
		Candidate: model.Candidate{ID: "1"}, At: at})
	svc.OnEvent(discovery.Event{Kind: discovery.EventSnapBack, UserID: "u1", SessionID: "s1", At: at})

	if got := swipes.recorded(); len(got) != 1 || got[0].CandidateID != "1" || got[0].Direction != enums.DirectionRight {
		t.Fatalf("swipe must be recorded on commit: %+v", got)
	}
	if svc.Pending() != 3 {
		t.Fatalf("unexpected pending: %d", svc.Pending())
	}
	if err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	if got := swipes.recorded(); len(got) != 1 {
		t.Fatalf("flush must not rewrite recorded swipes: %+v", got)
	}
	if len(events.batches) != 2 || len(events.batches[0]) != 2 || len(events.batches[1]) != 1 {
		t.Fatalf("unexpected batches: %d", len(events.batches))
	}
	first := events.batches[0][0]
	if first.Name != "discover_commit" || first.Props["likes_left"] != 4 || first.Props["direction"] != "right" {
		t.Fatalf("unexpected first event: %+v", first)
	}
	if svc.Pending() != 0 {
		t.Fatalf("buffer must be empty after flush")
	}
}

func TestOnEventUpdatesCounters(t *testing.T) {
	svc := NewService(nil, nil, Config{}, nil)

	before := testutil.ToFloat64(metrics.QuotaDenied)
	beforeLike := testutil.ToFloat64(metrics.Swipes.WithLabelValues("right"))
	svc.OnEvent(discovery.Event{Kind: discovery.EventDenied, UserID: "u1"})
	svc.OnEvent(discovery.Event{Kind: discovery.EventCommit, UserID: "u1", Direction: enums.DirectionRight})

	if got := testutil.ToFloat64(metrics.QuotaDenied) - before; got != 1 {
		t.Fatalf("unexpected denied delta: %v", got)
	}
	if got := testutil.ToFloat64(metrics.Swipes.WithLabelValues("right")) - beforeLike; got != 1 {
		t.Fatalf("unexpected swipe delta: %v", got)
	}
}

func TestBufferOverflowDropsEvents(t *testing.T) {
	svc := NewService(nil, nil, Config{MaxPending: 2, MaxBatchSize: 10}, nil)
	for i := 0; i < 5; i++ {
		svc.OnEvent(discovery.Event{Kind: discovery.EventAdvanced, UserID: "u1", Cursor: i})
	}
	if svc.Pending() != 2 {
		t.Fatalf("unexpected pending: got %d want 2", svc.Pending())
	}
}

func TestFlushReturnsStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(&eventStoreStub{err: boom}, nil, Config{}, nil)
	svc.OnEvent(discovery.Event{Kind: discovery.EventExhausted, UserID: "u1"})

	if err := svc.Flush(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestRunFlushesWhenBatchFills(t *testing.T) {
	events := &eventStoreStub{}
	svc := NewService(events, nil, Config{MaxBatchSize: 1, FlushInterval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	svc.OnEvent(discovery.Event{Kind: discovery.EventAdvanced, UserID: "u1"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		events.mu.Lock()
		n := len(events.batches)
		events.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("batch was not flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done
}

func TestFailedSwipeWriteIsRetriedOnFlush(t *testing.T) {
	swipes := &swipeStoreStub{err: errors.New("db down")}
	svc := NewService(nil, swipes, Config{}, nil)

	svc.OnEvent(discovery.Event{Kind: discovery.EventCommit, UserID: "u1", SessionID: "s1",
		Candidate: model.Candidate{ID: "7"}, Direction: enums.DirectionLeft})
	if got := swipes.recorded(); len(got) != 0 {
		t.Fatalf("unexpected swipes while store is down: %+v", got)
	}

	swipes.mu.Lock()
	swipes.err = nil
	swipes.mu.Unlock()

	if err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got := swipes.recorded()
	if len(got) != 1 || got[0].CandidateID != "7" || got[0].Direction != enums.DirectionLeft {
		t.Fatalf("unexpected retried swipes: %+v", got)
	}
	if err := svc.Flush(context.Background()); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if got := swipes.recorded(); len(got) != 1 {
		t.Fatalf("retried swipe must be written once: %+v", got)
	}
}
