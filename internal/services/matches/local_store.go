package matches

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
)

// LocalStore keeps the matches list as a JSON array under roam_matches.
// A malformed blob reads as empty and is replaced on the next append.
type LocalStore struct {
	kv kvstore.Store
}

func NewLocalStore(kv kvstore.Store) *LocalStore {
	return &LocalStore{kv: kv}
}

func (s *LocalStore) Append(ctx context.Context, rec model.MatchRecord) (bool, error) {
	added := false
	_, err := s.kv.Update(ctx, kvstore.KeyMatches, func(current string, ok bool) (string, error) {
		list := decodeMatches(current, ok)
		for _, existing := range list {
			if existing.UserID == rec.UserID && existing.CandidateID == rec.CandidateID {
				return current, nil
			}
		}
		list = append(list, rec)
		added = true
		payload, err := json.Marshal(list)
		if err != nil {
			return "", fmt.Errorf("encode matches: %w", err)
		}
		return string(payload), nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *LocalStore) List(ctx context.Context, userID string, limit int) ([]model.MatchRecord, error) {
	raw, ok, err := s.kv.Get(ctx, kvstore.KeyMatches)
	if err != nil {
		return nil, fmt.Errorf("read matches: %w", err)
	}

	out := make([]model.MatchRecord, 0)
	for _, rec := range decodeMatches(raw, ok) {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func decodeMatches(raw string, ok bool) []model.MatchRecord {
	if !ok || raw == "" {
		return nil
	}
	var list []model.MatchRecord
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}
