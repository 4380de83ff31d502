package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
)

// Store is the user record contract shared by the postgres repo and the
// in-process stores below. Missing users are pgrepo.ErrUserNotFound and
// duplicate emails pgrepo.ErrEmailTaken.
type Store interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (model.User, error)
	SetSubscription(ctx context.Context, id string, tier enums.SubscriptionTier) error
}

// MemoryStore keeps users in process memory; used when postgres is unavailable.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]model.User
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]model.User), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Email != "" {
		for _, existing := range s.users {
			if existing.Email == u.Email {
				return model.User{}, pgrepo.ErrEmailTaken
			}
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Subscription == "" {
		u.Subscription = enums.TierFree
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if email != "" && u.Email == email {
			return u, nil
		}
	}
	return model.User{}, pgrepo.ErrUserNotFound
}

func (s *MemoryStore) GetOrCreateByTelegramID(_ context.Context, telegramID int64, name string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if s.users[id].TelegramID == telegramID {
			return s.users[id], nil
		}
	}

	u := model.User{
		ID:           uuid.NewString(),
		Name:         name,
		TelegramID:   telegramID,
		Subscription: enums.TierFree,
		CreatedAt:    s.now().UTC(),
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) SetSubscription(_ context.Context, id string, tier enums.SubscriptionTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return pgrepo.ErrUserNotFound
	}
	u.Subscription = tier
	s.users[id] = u
	return nil
}
