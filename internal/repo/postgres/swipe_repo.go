package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Record stores the latest decision per (user, candidate).
func (r *SwipeRepo) Record(ctx context.Context, swipe model.Swipe) error {
	if strings.TrimSpace(swipe.UserID) == "" || strings.TrimSpace(swipe.CandidateID) == "" {
		return fmt.Errorf("invalid swipe payload")
	}
	if r.pool == nil {
		return nil
	}
	createdAt := swipe.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
INSERT INTO swipes (user_id, candidate_id, direction, created_at)
VALUES ($1::uuid, $2, $3, $4)
ON CONFLICT (user_id, candidate_id) DO UPDATE SET
	direction = EXCLUDED.direction,
	created_at = EXCLUDED.created_at
`, swipe.UserID, swipe.CandidateID, string(swipe.Direction), createdAt); err != nil {
		return fmt.Errorf("record swipe: %w", err)
	}
	return nil
}

func (r *SwipeRepo) SwipedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if r.pool == nil {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
SELECT candidate_id
FROM swipes
WHERE user_id = $1::uuid
`, userID)
	if err != nil {
		return nil, fmt.Errorf("list swiped candidates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan swiped candidate: %w", err)
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swiped candidates: %w", err)
	}
	return out, nil
}
