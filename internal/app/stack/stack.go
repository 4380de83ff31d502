// Package stack wires the discovery engine and its stores for the API and
// bot processes.
package stack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/enums"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/domain/model"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/kvstore"
	s3infra "github.com/Drakkarus-debug/Roam-Romance-001/internal/infra/s3"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/jobs/cleanup"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/metrics"
	pgrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/postgres"
	redrepo "github.com/Drakkarus-debug/Roam-Romance-001/internal/repo/redis"
	analyticsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/analytics"
	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/match"
	matchessvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/matches"
	mediasvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/media"
	profilesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/profiles"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	ratesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/rate"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/users"
)

// UserStore is satisfied by the postgres user repo and the in-memory store.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	GetOrCreateByTelegramID(ctx context.Context, telegramID int64, name string) (model.User, error)
	SetSubscription(ctx context.Context, id string, tier enums.SubscriptionTier) error
}

type Options struct {
	// Listeners receive every discovery event after the built-in ones.
	Listeners []discovery.Listener
	// Scheduler overrides the session timer source.
	Scheduler discovery.Scheduler
}

type Stack struct {
	Config   config.Config
	Logger   *zap.Logger
	Postgres *pgxpool.Pool
	Redis    *goredis.Client
	S3       *minio.Client
	Local    kvstore.Store

	Users          UserStore
	Auth           *authsvc.Service
	Entitlements   *entsvc.Service
	Gate           *quota.Gate
	Registry       *discovery.Registry
	Matches        *matchessvc.Service
	Analytics      *analyticsvc.Service
	Cleanup        *cleanup.Job
	SwipeLimiter   *ratesvc.Limiter
	PointerLimiter *ratesvc.Limiter

	mu        sync.Mutex
	cancel    context.CancelFunc
	flushDone chan struct{}
	scheduler gocron.Scheduler
}

// New connects the configured backends. Postgres, redis and S3 failures are
// logged and the stack continues in degraded mode on local stores.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*Stack, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	s := &Stack{Config: cfg, Logger: log}

	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s.Postgres = p
	}

	if c, err := redrepo.NewClient(ctx, redrepo.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("redis init failed, rate limits disabled", zap.Error(err))
	} else {
		s.Redis = c
	}

	if c, err := s3infra.NewClient(ctx, s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, photo references served as stored", zap.Error(err))
	} else {
		s.S3 = c
	}

	local, err := openLocal(cfg.Local.DBPath)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Local = local

	catalogue, err := loadCatalogue(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	if s.Postgres != nil {
		s.Users = pgrepo.NewUserRepo(s.Postgres)
	} else {
		s.Users = users.NewMemoryStore()
	}

	var matchStore matchessvc.Store = matchessvc.NewLocalStore(s.Local)
	if s.Postgres != nil {
		matchStore = pgrepo.NewMatchRepo(s.Postgres)
	}

	var swipeRepo swipeHistory = profilesvc.NewMemorySwipes()
	if s.Postgres != nil {
		swipeRepo = pgrepo.NewSwipeRepo(s.Postgres)
	}
	s.Auth = authsvc.NewService(authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL), s.Users)
	s.Entitlements = entsvc.NewService(s.Users)
	s.Gate = quota.NewGate(s.quotaStore(), quota.Config{
		FreeLikesPerDay: cfg.Engine.FreeLikesPerDay,
		DefaultTimezone: cfg.Engine.Timezone,
	}, log)
	s.Matches = matchessvc.NewService(matchStore, log)
	s.Analytics = analyticsvc.NewService(pgrepo.NewEventRepo(s.Postgres), swipeRepo, analyticsvc.Config{}, log)

	var photos profilesvc.PhotoResolver
	if s.S3 != nil {
		photos = mediasvc.NewResolver(mediasvc.NewS3Storage(s.S3), mediasvc.Config{
			DefaultBucket: cfg.S3.Bucket,
			SignedURLTTL:  cfg.S3.PresignTTL,
		}, log)
	}

	listeners := []discovery.Listener{s.Analytics, s.Matches}
	listeners = append(listeners, opts.Listeners...)

	s.Registry = discovery.NewRegistry(discovery.RegistryDependencies{
		Loader:         profilesvc.NewService(catalogue, swipeRepo, photos, log),
		Gate:           s.Gate,
		Roller:         match.NewRoller(cfg.Engine.MatchProbability, nil),
		Tiers:          s.Entitlements,
		Scheduler:      opts.Scheduler,
		Listeners:      listeners,
		Logger:         log,
		OnActiveChange: metrics.SetSessionsActive,
	}, discovery.Config{
		SwipeThreshold:     cfg.Engine.SwipeThreshold,
		ExitDelay:          cfg.Engine.ExitDelay,
		CelebrationTimeout: cfg.Engine.CelebrationTimeout,
	})

	if s.Redis != nil {
		rateRepo := redrepo.NewRateRepo(s.Redis)
		s.SwipeLimiter = ratesvc.NewLimiter(rateRepo, "swipe", cfg.Rate.SwipesPerMinute, cfg.Rate.SwipesPer10Sec)
		s.PointerLimiter = ratesvc.NewLimiter(rateRepo, "pointer", cfg.Rate.PointerPerMinute, cfg.Rate.PointerPer10Sec)
	}

	var purger cleanup.Purger
	if s.Postgres != nil {
		purger = cleanup.NewPostgresPurger(s.Postgres)
	}
	s.Cleanup = cleanup.New(purger, s.Registry, cfg.Cleanup.QuotaRetention, cfg.Engine.SessionIdleTTL, log)

	return s, nil
}

// Start launches the analytics flusher and the cleanup schedule.
func (s *Stack) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	sched, err := s.Cleanup.Start(runCtx, s.Config.Cleanup.Interval)
	if err != nil {
		cancel()
		return fmt.Errorf("start cleanup job: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Analytics.Run(runCtx)
	}()

	s.cancel = cancel
	s.flushDone = done
	s.scheduler = sched
	return nil
}

// Stop closes every session, stops the background jobs and waits for the
// final analytics flush or ctx, whichever comes first.
func (s *Stack) Stop(ctx context.Context) error {
	s.Registry.CloseAll()

	s.mu.Lock()
	cancel, done, sched := s.cancel, s.flushDone, s.scheduler
	s.cancel, s.flushDone, s.scheduler = nil, nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	var stopErr error
	if err := sched.Shutdown(); err != nil {
		stopErr = fmt.Errorf("shutdown scheduler: %w", err)
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		stopErr = errors.Join(stopErr, ctx.Err())
	}
	return stopErr
}

// Close releases backend connections.
func (s *Stack) Close() error {
	var closeErr error
	if s.Postgres != nil {
		s.Postgres.Close()
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if c, ok := s.Local.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

func (s *Stack) quotaStore() quota.Store {
	backend := s.Config.Quota.Backend
	if backend == config.QuotaBackendPostgres && s.Postgres == nil {
		s.Logger.Warn("quota backend postgres unavailable, falling back")
		backend = config.QuotaBackendRedis
	}
	if backend == config.QuotaBackendRedis && s.Redis == nil {
		if s.Config.Quota.Backend == config.QuotaBackendRedis {
			s.Logger.Warn("quota backend redis unavailable, falling back")
		}
		backend = config.QuotaBackendLocal
	}

	switch backend {
	case config.QuotaBackendPostgres:
		return pgrepo.NewQuotaRepo(s.Postgres)
	case config.QuotaBackendRedis:
		return redrepo.NewQuotaRepo(s.Redis)
	default:
		s.Logger.Info("quota counters kept in the local store")
		return quota.NewSharedLocalStore(s.Local, s.Logger)
	}
}

func openLocal(path string) (kvstore.Store, error) {
	if strings.TrimSpace(path) == "" {
		return kvstore.NewMemory(), nil
	}
	db, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return db, nil
}

func loadCatalogue(cfg config.Config) ([]model.Candidate, error) {
	if strings.TrimSpace(cfg.Engine.CataloguePath) == "" {
		return profilesvc.DefaultCatalogue()
	}
	catalogue, err := profilesvc.LoadCatalogueFile(cfg.Engine.CataloguePath)
	if err != nil {
		return nil, fmt.Errorf("load candidate catalogue: %w", err)
	}
	return catalogue, nil
}

type swipeHistory interface {
	analyticsvc.SwipeStore
	profilesvc.SwipedSource
}
