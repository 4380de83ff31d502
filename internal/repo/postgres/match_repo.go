package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
)

type MatchRepo struct {
	pool *pgxpool.Pool
}

func NewMatchRepo(pool *pgxpool.Pool) *MatchRepo {
	return &MatchRepo{pool: pool}
}

// Append inserts a match once per (user, candidate) and reports whether a row was added.
func (r *MatchRepo) Append(ctx context.Context, rec model.MatchRecord) (bool, error) {
	if strings.TrimSpace(rec.UserID) == "" || strings.TrimSpace(rec.CandidateID) == "" {
		return false, fmt.Errorf("invalid match payload")
	}
	if r.pool == nil {
		return false, errNilPool
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO matches (user_id, candidate_id, name, photo, created_at)
VALUES ($1::uuid, $2, $3, $4, $5)
ON CONFLICT (user_id, candidate_id) DO NOTHING
`, rec.UserID, rec.CandidateID, rec.Name, rec.Photo, createdAt)
	if err != nil {
		return false, fmt.Errorf("insert match: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *MatchRepo) List(ctx context.Context, userID string, limit int) ([]model.MatchRecord, error) {
	if r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
SELECT user_id::text, candidate_id, name, photo, created_at
FROM matches
WHERE user_id = $1::uuid
ORDER BY created_at DESC, candidate_id
LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	out := make([]model.MatchRecord, 0, limit)
	for rows.Next() {
		var rec model.MatchRecord
		if err := rows.Scan(&rec.UserID, &rec.CandidateID, &rec.Name, &rec.Photo, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return out, nil
}
