package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/metrics"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
)

const (
	defaultMaxBatchSize  = 100
	defaultMaxPending    = 10_000
	defaultFlushInterval = 5 * time.Second
	swipeWriteTimeout    = 2 * time.Second
)

type EventStore interface {
	InsertBatch(ctx context.Context, events []pgrepo.EventWriteRecord) error
}

type SwipeStore interface {
	Record(ctx context.Context, swipe model.Swipe) error
}

type Config struct {
	MaxBatchSize  int
	MaxPending    int
	FlushInterval time.Duration
}

// Service observes discovery sessions: it updates counters and writes swipe
// history immediately, and buffers events for batched writes. A swipe whose
// write fails is retried on the next flush.
type Service struct {
	events EventStore
	swipes SwipeStore
	cfg    Config
	now    func() time.Time
	log    *zap.Logger

	mu            sync.Mutex
	pendingEvents []pgrepo.EventWriteRecord
	pendingSwipes []model.Swipe
	dropped       int

	flushMu sync.Mutex
	kick    chan struct{}
}

func NewService(events EventStore, swipes SwipeStore, cfg Config, log *zap.Logger) *Service {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = defaultMaxPending
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		events: events,
		swipes: swipes,
		cfg:    cfg,
		now:    time.Now,
		log:    log,
		kick:   make(chan struct{}, 1),
	}
}

func (s *Service) OnEvent(ev discovery.Event) {
	observe(ev)

	at := ev.At
	if at.IsZero() {
		at = s.now()
	}

	if ev.Kind == discovery.EventCommit {
		s.recordSwipe(model.Swipe{
			UserID:      ev.UserID,
			CandidateID: ev.Candidate.ID,
			Direction:   ev.Direction,
			CreatedAt:   at.UTC(),
		})
	}

	s.mu.Lock()
	if len(s.pendingEvents) >= s.cfg.MaxPending {
		s.dropped++
		s.mu.Unlock()
		return
	}
	s.pendingEvents = append(s.pendingEvents, pgrepo.EventWriteRecord{
		UserID:     ev.UserID,
		SessionID:  ev.SessionID,
		Name:       "discover_" + string(ev.Kind),
		OccurredAt: at.UTC(),
		Props:      eventProps(ev),
	})
	full := len(s.pendingEvents) >= s.cfg.MaxBatchSize
	s.mu.Unlock()

	if full {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
}

func (s *Service) recordSwipe(sw model.Swipe) {
	if s.swipes == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), swipeWriteTimeout)
	err := s.swipes.Record(ctx, sw)
	cancel()
	if err == nil {
		return
	}
	s.log.Warn("record swipe failed, retrying on flush",
		zap.String("user_id", sw.UserID),
		zap.String("candidate_id", sw.CandidateID),
		zap.Error(err),
	)
	s.mu.Lock()
	if len(s.pendingSwipes) < s.cfg.MaxPending {
		s.pendingSwipes = append(s.pendingSwipes, sw)
	} else {
		s.dropped++
	}
	s.mu.Unlock()
}

// Run flushes on a ticker or when a batch fills, until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Flush(flushCtx); err != nil {
				s.log.Warn("final analytics flush failed", zap.Error(err))
			}
			cancel()
			return
		case <-ticker.C:
		case <-s.kick:
		}
		if err := s.Flush(ctx); err != nil {
			s.log.Warn("analytics flush failed", zap.Error(err))
		}
	}
}

// Flush writes everything buffered so far. Retried swipes are written one by
// one before the event batch.
func (s *Service) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.Lock()
	events := s.pendingEvents
	swipes := s.pendingSwipes
	dropped := s.dropped
	s.pendingEvents = nil
	s.pendingSwipes = nil
	s.dropped = 0
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Warn("analytics buffer overflow", zap.Int("dropped", dropped))
	}

	var errs []error
	if s.swipes != nil {
		for _, sw := range swipes {
			if err := s.swipes.Record(ctx, sw); err != nil {
				errs = append(errs, fmt.Errorf("record swipe %s/%s: %w", sw.UserID, sw.CandidateID, err))
			}
		}
	}
	if s.events != nil {
		for start := 0; start < len(events); start += s.cfg.MaxBatchSize {
			end := min(start+s.cfg.MaxBatchSize, len(events))
			if err := s.events.InsertBatch(ctx, events[start:end]); err != nil {
				errs = append(errs, fmt.Errorf("insert events batch: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pendingEvents)
}

func observe(ev discovery.Event) {
	switch ev.Kind {
	case discovery.EventCommit:
		metrics.IncSwipe(string(ev.Direction))
	case discovery.EventSnapBack:
		metrics.SnapBacks.Inc()
	case discovery.EventDenied:
		metrics.QuotaDenied.Inc()
	case discovery.EventMatch:
		metrics.Matches.Inc()
	case discovery.EventExhausted:
		metrics.Exhausted.Inc()
	}
}

func eventProps(ev discovery.Event) map[string]any {
	props := map[string]any{"cursor": ev.Cursor}
	if ev.Candidate.ID != "" {
		props["candidate_id"] = ev.Candidate.ID
	}
	if ev.Direction != "" {
		props["direction"] = string(ev.Direction)
	}
	if ev.Quota != nil {
		props["likes_left"] = ev.Quota.LikesLeft
		props["likes_used"] = ev.Quota.Used
	}
	return props
}
