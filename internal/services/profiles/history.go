package profiles

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

// MemorySwipes keeps swipe history in process memory; used when postgres is
// unavailable.
type MemorySwipes struct {
	mu     sync.Mutex
	byUser map[string]map[string]struct{}
}

func NewMemorySwipes() *MemorySwipes {
	return &MemorySwipes{byUser: make(map[string]map[string]struct{})}
}

func (m *MemorySwipes) Record(_ context.Context, swipe model.Swipe) error {
	if strings.TrimSpace(swipe.UserID) == "" || strings.TrimSpace(swipe.CandidateID) == "" {
		return fmt.Errorf("invalid swipe payload")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, ok := m.byUser[swipe.UserID]
	if !ok {
		ids = make(map[string]struct{})
		m.byUser[swipe.UserID] = ids
	}
	ids[swipe.CandidateID] = struct{}{}
	return nil
}

func (m *MemorySwipes) SwipedIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]struct{}, len(m.byUser[userID]))
	for id := range m.byUser[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}
