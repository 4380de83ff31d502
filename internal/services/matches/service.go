package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
)

var ErrValidation = errors.New("validation error")

const (
	defaultListLimit = 50
	maxListLimit     = 200
	listenerTimeout  = 5 * time.Second
)

type Store interface {
	Append(ctx context.Context, rec model.MatchRecord) (bool, error)
	List(ctx context.Context, userID string, limit int) ([]model.MatchRecord, error)
}

type Service struct {
	store Store
	now   func() time.Time
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, now: time.Now, log: log}
}

// Record appends a match for the user. Non-matches and repeats are no-ops.
func (s *Service) Record(ctx context.Context, userID string, outcome model.MatchOutcome) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrValidation
	}
	if !outcome.Matched {
		return false, nil
	}
	if strings.TrimSpace(outcome.Candidate.ID) == "" {
		return false, ErrValidation
	}
	if s.store == nil {
		return false, fmt.Errorf("match store is nil")
	}

	added, err := s.store.Append(ctx, model.MatchRecord{
		UserID:      userID,
		CandidateID: outcome.Candidate.ID,
		Name:        outcome.Candidate.Name,
		Photo:       outcome.Candidate.PrimaryPhoto(),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("append match: %w", err)
	}
	return added, nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]model.MatchRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("match store is nil")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.store.List(ctx, userID, limit)
}

// OnEvent records match events emitted by discovery sessions.
func (s *Service) OnEvent(ev discovery.Event) {
	if ev.Kind != discovery.EventMatch {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), listenerTimeout)
	defer cancel()

	if _, err := s.Record(ctx, ev.UserID, model.MatchOutcome{Matched: true, Candidate: ev.Candidate}); err != nil {
		s.log.Error("record match failed",
			zap.String("user_id", ev.UserID),
			zap.String("candidate_id", ev.Candidate.ID),
			zap.Error(err),
		)
	}
}
