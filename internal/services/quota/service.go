package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/rules"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrDependenciesNil = errors.New("quota dependencies are not configured")
)

// Store keeps per-user per-day like counters. ConsumeLike must check and
// increment as one atomic step; limit == rules.Unlimited never denies.
type Store interface {
	GetLikesUsed(ctx context.Context, userID, dayKey string) (int, error)
	ConsumeLike(ctx context.Context, userID, dayKey, timezone string, limit int) (used int, allowed bool, err error)
}

type Config struct {
	FreeLikesPerDay int
	DefaultTimezone string
}

type Decision struct {
	Allowed bool
	Used    int
	// LikesLeft is -1 for unlimited tiers.
	LikesLeft int
	ResetAt   time.Time
}

type Snapshot struct {
	LikesLeft int
	Used      int
	Limit     int
	ResetAt   time.Time
	Unlimited bool
}

// Gate enforces the daily like quota.
type Gate struct {
	store    Store
	cfg      Config
	loc      *time.Location
	timezone string
	now      func() time.Time
	log      *zap.Logger
}

func NewGate(store Store, cfg Config, log *zap.Logger) *Gate {
	if cfg.FreeLikesPerDay <= 0 {
		cfg.FreeLikesPerDay = rules.FreeLikesPerDay
	}
	if strings.TrimSpace(cfg.DefaultTimezone) == "" {
		cfg.DefaultTimezone = "UTC"
	}
	if log == nil {
		log = zap.NewNop()
	}

	loc, name := rules.LoadLocation(cfg.DefaultTimezone)
	return &Gate{
		store:    store,
		cfg:      cfg,
		loc:      loc,
		timezone: name,
		now:      time.Now,
		log:      log,
	}
}

// In returns a gate sharing the same store that computes day keys in tz.
// An empty or unknown tz keeps the configured default.
func (g *Gate) In(tz string) *Gate {
	tz = strings.TrimSpace(tz)
	if tz == "" {
		return g
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		g.log.Warn("unknown timezone, using default", zap.String("timezone", tz), zap.String("default", g.timezone))
		return g
	}
	clone := *g
	clone.loc = loc
	clone.timezone = tz
	return &clone
}

func (g *Gate) Timezone() string {
	return g.timezone
}

func (g *Gate) FreeLimit() int {
	return g.cfg.FreeLikesPerDay
}

// TryConsume charges one like for today. Denied is not an error.
func (g *Gate) TryConsume(ctx context.Context, userID string, tier enums.SubscriptionTier, today time.Time) (Decision, error) {
	if strings.TrimSpace(userID) == "" {
		return Decision{}, ErrValidation
	}
	if g.store == nil {
		return Decision{}, ErrDependenciesNil
	}

	dayKey := rules.DayKey(today, g.loc)
	resetAt := rules.NextResetAt(today, g.loc)
	limit := rules.DailyLikeLimit(tier, g.cfg.FreeLikesPerDay)

	used, allowed, err := g.store.ConsumeLike(ctx, userID, dayKey, g.timezone, limit)
	if err != nil {
		return Decision{}, fmt.Errorf("consume daily like: %w", err)
	}

	return Decision{
		Allowed:   allowed,
		Used:      used,
		LikesLeft: likesLeft(limit, used),
		ResetAt:   resetAt,
	}, nil
}

func (g *Gate) Snapshot(ctx context.Context, userID string, tier enums.SubscriptionTier) (Snapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return Snapshot{}, ErrValidation
	}
	if g.store == nil {
		return Snapshot{}, ErrDependenciesNil
	}

	now := g.now()
	limit := rules.DailyLikeLimit(tier, g.cfg.FreeLikesPerDay)
	used, err := g.store.GetLikesUsed(ctx, userID, rules.DayKey(now, g.loc))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read daily quota: %w", err)
	}

	return Snapshot{
		LikesLeft: likesLeft(limit, used),
		Used:      used,
		Limit:     limit,
		ResetAt:   rules.NextResetAt(now, g.loc),
		Unlimited: limit == rules.Unlimited,
	}, nil
}

func likesLeft(limit, used int) int {
	if limit == rules.Unlimited {
		return -1
	}
	left := limit - used
	if left < 0 {
		left = 0
	}
	return left
}
