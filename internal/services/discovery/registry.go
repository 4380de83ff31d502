package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
)

// Loader supplies the candidate batch for a user.
type Loader interface {
	Load(ctx context.Context, userID string) ([]model.Candidate, error)
}

type RegistryDependencies struct {
	Loader    Loader
	Gate      *quota.Gate
	Roller    Roller
	Tiers     TierSource
	Scheduler Scheduler
	Listeners []Listener
	Logger    *zap.Logger
	// OnActiveChange observes the number of open sessions.
	OnActiveChange func(active int)
}

// Registry holds at most one session per user.
type Registry struct {
	deps RegistryDependencies
	cfg  Config
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(deps RegistryDependencies, cfg Config) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Registry{
		deps:     deps,
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Start opens a fresh session for the user, replacing any previous one.
// timezone selects the local day used by the like quota.
func (r *Registry) Start(ctx context.Context, userID, timezone string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrValidation
	}
	if r.deps.Loader == nil || r.deps.Gate == nil || r.deps.Roller == nil {
		return nil, ErrDependenciesNil
	}

	queue, err := r.deps.Loader.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	session, err := NewSession(uuid.NewString(), userID, queue, Dependencies{
		Gate:      r.deps.Gate.In(timezone),
		Roller:    r.deps.Roller,
		Tiers:     r.deps.Tiers,
		Scheduler: r.deps.Scheduler,
		Now:       r.now,
	}, r.cfg)
	if err != nil {
		return nil, err
	}
	for _, l := range r.deps.Listeners {
		session.Subscribe(l)
	}

	r.mu.Lock()
	prev := r.sessions[userID]
	r.sessions[userID] = session
	active := len(r.sessions)
	r.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
	r.notify(active)

	r.deps.Logger.Debug("discovery session started",
		zap.String("user_id", userID),
		zap.String("session_id", session.ID()),
		zap.Int("queue_len", len(queue)),
	)
	return session, nil
}

func (r *Registry) Get(userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

// Refill loads a fresh batch into the user's session and returns how many
// candidates were appended.
func (r *Registry) Refill(ctx context.Context, userID string) (int, error) {
	s, err := r.Get(userID)
	if err != nil {
		return 0, err
	}
	batch, err := r.deps.Loader.Load(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load candidates: %w", err)
	}
	return s.Refill(batch), nil
}

func (r *Registry) Close(userID string) error {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	active := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrNoSession
	}
	s.Close()
	r.notify(active)
	return nil
}

// EvictIdle closes sessions untouched for longer than ttl.
func (r *Registry) EvictIdle(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	var stale []*Session
	for userID, s := range r.sessions {
		if s.LastActivity().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, userID)
		}
	}
	active := len(r.sessions)
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.notify(active)
	}
	return len(stale)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	r.notify(0)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) notify(active int) {
	if r.deps.OnActiveChange != nil {
		r.deps.OnActiveChange(active)
	}
}
