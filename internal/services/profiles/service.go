package profiles

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

// SwipedSource lists candidates the user has already swiped.
type SwipedSource interface {
	SwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

type PhotoResolver interface {
	Candidate(ctx context.Context, c model.Candidate) model.Candidate
}

// Service builds discovery queues. It satisfies discovery.Loader.
type Service struct {
	catalogue []model.Candidate
	swiped    SwipedSource
	photos    PhotoResolver
	log       *zap.Logger
}

func NewService(catalogue []model.Candidate, swiped SwipedSource, photos PhotoResolver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		catalogue: catalogue,
		swiped:    swiped,
		photos:    photos,
		log:       log,
	}
}

// Load returns the catalogue in order, minus the user and anyone already swiped.
func (s *Service) Load(ctx context.Context, userID string) ([]model.Candidate, error) {
	var seen map[string]struct{}
	if s.swiped != nil {
		ids, err := s.swiped.SwipedIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load swiped ids: %w", err)
		}
		seen = ids
	}

	out := make([]model.Candidate, 0, len(s.catalogue))
	for _, c := range s.catalogue {
		if c.ID == userID {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		c.Photos = append([]string(nil), c.Photos...)
		c.Interests = append([]string(nil), c.Interests...)
		if s.photos != nil {
			c = s.photos.Candidate(ctx, c)
		}
		out = append(out, c)
	}

	s.log.Debug("discovery queue built",
		zap.String("user_id", userID),
		zap.Int("catalogue", len(s.catalogue)),
		zap.Int("queue", len(out)),
	)
	return out, nil
}
