package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
)

const (
	defaultQuotaRetention = 7 * 24 * time.Hour
	defaultIdleTTL        = 30 * time.Minute
	defaultInterval       = time.Hour
)

// Purger removes stored rows older than cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (PurgeStats, error)
}

type PurgeStats struct {
	QuotaRows int64
	EventRows int64
}

type SessionEvictor interface {
	EvictIdle(ttl time.Duration) int
}

type Job struct {
	purger         Purger
	sessions       SessionEvictor
	quotaRetention time.Duration
	idleTTL        time.Duration
	now            func() time.Time
	logger         *zap.Logger
}

func New(purger Purger, sessions SessionEvictor, quotaRetention, idleTTL time.Duration, logger *zap.Logger) *Job {
	if quotaRetention <= 0 {
		quotaRetention = defaultQuotaRetention
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		purger:         purger,
		sessions:       sessions,
		quotaRetention: quotaRetention,
		idleTTL:        idleTTL,
		now:            time.Now,
		logger:         logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sessions != nil {
		if n := j.sessions.EvictIdle(j.idleTTL); n > 0 {
			j.logger.Info("evicted idle discovery sessions", zap.Int("closed", n))
		}
	}

	if j.purger == nil {
		return nil
	}

	cutoff := j.now().Add(-j.quotaRetention)
	stats, err := j.purger.Purge(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge stale rows: %w", err)
	}
	if stats.QuotaRows > 0 || stats.EventRows > 0 {
		j.logger.Info("cleanup stale rows completed",
			zap.Int64("quota_rows", stats.QuotaRows),
			zap.Int64("event_rows", stats.EventRows),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

// Start schedules Run every interval. The caller shuts the scheduler down.
func (j *Job) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	if interval <= 0 {
		interval = defaultInterval
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := j.Run(ctx); err != nil {
				j.logger.Warn("cleanup job failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("schedule cleanup job: %w", err)
	}

	sched.Start()
	return sched, nil
}

// PostgresPurger deletes stale quota days and analytics events in one transaction.
type PostgresPurger struct {
	pool   *pgxpool.Pool
	quotas *pgrepo.QuotaRepo
	events *pgrepo.EventRepo
}

func NewPostgresPurger(pool *pgxpool.Pool) *PostgresPurger {
	return &PostgresPurger{
		pool:   pool,
		quotas: pgrepo.NewQuotaRepo(pool),
		events: pgrepo.NewEventRepo(pool),
	}
}

func (p *PostgresPurger) Purge(ctx context.Context, cutoff time.Time) (PurgeStats, error) {
	var stats PurgeStats
	err := pgrepo.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		quotaRows, err := p.quotas.DeleteBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		eventRows, err := p.events.DeleteBefore(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		stats = PurgeStats{QuotaRows: quotaRows, EventRows: eventRows}
		return nil
	})
	if err != nil {
		return PurgeStats{}, err
	}
	return stats, nil
}
