package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var eventColumns = []string{"user_id", "session_id", "name", "payload", "occurred_at"}

// EventRepo stores discovery analytics events.
type EventRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

type EventWriteRecord struct {
	UserID     string
	SessionID  string
	Name       string
	OccurredAt time.Time
	Props      map[string]any
}

func NewEventRepo(pool *pgxpool.Pool) *EventRepo {
	return &EventRepo{pool: pool, now: time.Now}
}

// InsertBatch copies the events in one COPY round trip. A nil pool drops
// them silently.
func (r *EventRepo) InsertBatch(ctx context.Context, events []EventWriteRecord) error {
	if len(events) == 0 || r.pool == nil {
		return nil
	}

	rows := make([][]any, 0, len(events))
	for i, ev := range events {
		row, err := r.eventRow(ev)
		if err != nil {
			return fmt.Errorf("encode event #%d (%s): %w", i, ev.Name, err)
		}
		rows = append(rows, row)
	}

	n, err := r.pool.CopyFrom(ctx, pgx.Identifier{"events"}, eventColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy events: %w", err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("copy events: wrote %d of %d rows", n, len(rows))
	}
	return nil
}

func (r *EventRepo) eventRow(ev EventWriteRecord) ([]any, error) {
	props := ev.Props
	if props == nil {
		props = map[string]any{}
	}
	payload, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}

	// anonymous or non-uuid users are stored as NULL
	var userID pgtype.UUID
	if id, err := uuid.Parse(ev.UserID); err == nil {
		userID = pgtype.UUID{Bytes: id, Valid: true}
	}
	sessionID := pgtype.Text{String: ev.SessionID, Valid: ev.SessionID != ""}

	at := ev.OccurredAt
	if at.IsZero() {
		at = r.now()
	}
	return []any{userID, sessionID, ev.Name, payload, at.UTC()}, nil
}

// DeleteBefore drops analytics events older than cutoff.
func (r *EventRepo) DeleteBefore(ctx context.Context, tx pgx.Tx, cutoff time.Time) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is required")
	}
	tag, err := tx.Exec(ctx, `DELETE FROM events WHERE occurred_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete stale events: %w", err)
	}
	return tag.RowsAffected(), nil
}
