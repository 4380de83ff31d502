package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuotaRepo struct {
	pool *pgxpool.Pool
}

func NewQuotaRepo(pool *pgxpool.Pool) *QuotaRepo {
	return &QuotaRepo{pool: pool}
}

func (r *QuotaRepo) GetLikesUsed(ctx context.Context, userID, dayKey string) (int, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dayKey) == "" {
		return 0, fmt.Errorf("invalid quota lookup payload")
	}
	if r.pool == nil {
		return 0, errNilPool
	}

	var likesUsed int
	err := r.pool.QueryRow(ctx, `
SELECT likes_used
FROM quotas_daily
WHERE user_id = $1 AND day_key = $2::date
LIMIT 1
`, userID, dayKey).Scan(&likesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get daily quota usage: %w", err)
	}

	return likesUsed, nil
}

// ConsumeLike increments the day's counter in one statement. With a positive
// limit the upsert only fires while likes_used < limit; no returned row means
// the limit was already reached.
func (r *QuotaRepo) ConsumeLike(ctx context.Context, userID, dayKey, timezone string, limit int) (int, bool, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(dayKey) == "" {
		return 0, false, fmt.Errorf("invalid like quota consume payload")
	}
	if r.pool == nil {
		return 0, false, errNilPool
	}
	if strings.TrimSpace(timezone) == "" {
		timezone = "UTC"
	}

	if limit <= 0 {
		var likesUsed int
		err := r.pool.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	tz_name,
	likes_used,
	updated_at
) VALUES ($1, $2::date, $3, 1, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	likes_used = quotas_daily.likes_used + 1,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
RETURNING likes_used
`, userID, dayKey, timezone).Scan(&likesUsed)
		if err != nil {
			return 0, false, fmt.Errorf("increment daily quota usage: %w", err)
		}
		return likesUsed, true, nil
	}

	var likesUsed int
	err := r.pool.QueryRow(ctx, `
INSERT INTO quotas_daily (
	user_id,
	day_key,
	tz_name,
	likes_used,
	updated_at
) VALUES ($1, $2::date, $3, 1, NOW())
ON CONFLICT (user_id, day_key) DO UPDATE SET
	likes_used = quotas_daily.likes_used + 1,
	tz_name = EXCLUDED.tz_name,
	updated_at = NOW()
WHERE quotas_daily.likes_used < $4
RETURNING likes_used
`, userID, dayKey, timezone, limit).Scan(&likesUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			used, getErr := r.GetLikesUsed(ctx, userID, dayKey)
			if getErr != nil {
				return 0, false, getErr
			}
			return used, false, nil
		}
		return 0, false, fmt.Errorf("consume likes quota with limit: %w", err)
	}

	return likesUsed, true, nil
}

// DeleteBefore drops counters for days strictly before cutoff.
func (r *QuotaRepo) DeleteBefore(ctx context.Context, tx pgx.Tx, cutoff time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}

	tag, err := tx.Exec(ctx, `
DELETE FROM quotas_daily
WHERE day_key < $1::date
`, cutoff.UTC().Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("delete stale quotas: %w", err)
	}
	return tag.RowsAffected(), nil
}
