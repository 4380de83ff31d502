package quota

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/rules"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
)

// LocalStore keeps a single device-local QuotaRecord under kvstore.KeyQuota.
// Absent, malformed, stale or foreign records count as zero.
type LocalStore struct {
	mu     sync.Mutex
	kv     kvstore.Store
	keyFor func(userID string) string
	log    *zap.Logger
}

func NewLocalStore(kv kvstore.Store, log *zap.Logger) *LocalStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &LocalStore{
		kv:     kv,
		keyFor: func(string) string { return kvstore.KeyQuota },
		log:    log,
	}
}

// NewSharedLocalStore keeps one record per user, for a server running
// without postgres or redis.
func NewSharedLocalStore(kv kvstore.Store, log *zap.Logger) *LocalStore {
	s := NewLocalStore(kv, log)
	s.keyFor = func(userID string) string { return kvstore.KeyQuota + ":" + userID }
	return s
}

func (s *LocalStore) GetLikesUsed(ctx context.Context, userID, dayKey string) (int, error) {
	if s.kv == nil {
		return 0, ErrDependenciesNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.kv.Get(ctx, s.keyFor(userID))
	if err != nil {
		return 0, fmt.Errorf("read local quota: %w", err)
	}
	return s.countFor(raw, ok, userID, dayKey), nil
}

func (s *LocalStore) ConsumeLike(ctx context.Context, userID, dayKey, _ string, limit int) (int, bool, error) {
	if s.kv == nil {
		return 0, false, ErrDependenciesNil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		used    int
		allowed bool
	)
	_, err := s.kv.Update(ctx, s.keyFor(userID), func(current string, ok bool) (string, error) {
		used = s.countFor(current, ok, userID, dayKey)
		if limit != rules.Unlimited && used >= limit {
			// leave the stored blob untouched
			allowed = false
			return current, nil
		}
		used++
		allowed = true
		payload, err := json.Marshal(model.QuotaRecord{Date: dayKey, Count: used, UserID: userID})
		if err != nil {
			return "", err
		}
		return string(payload), nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("update local quota: %w", err)
	}
	return used, allowed, nil
}

func (s *LocalStore) countFor(raw string, ok bool, userID, dayKey string) int {
	if !ok || raw == "" {
		return 0
	}
	var rec model.QuotaRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Warn("malformed local quota record, treating as zero", zap.Error(err))
		return 0
	}
	if rec.Date != dayKey {
		return 0
	}
	if rec.UserID != "" && rec.UserID != userID {
		return 0
	}
	if rec.Count < 0 {
		return 0
	}
	return rec.Count
}
