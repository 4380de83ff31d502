package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/app/stack"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	stack      *stack.Stack
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	st, err := stack.New(ctx, cfg, log, stack.Options{})
	if err != nil {
		return nil, fmt.Errorf("build discovery stack: %w", err)
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.HTTP.WriteTimeout)
	RegisterRoutes(r, Dependencies{
		AuthService:        st.Auth,
		EntitlementService: st.Entitlements,
		MatchService:       st.Matches,
		Registry:           st.Registry,
		Gate:               st.Gate,
		SwipeLimiter:       st.SwipeLimiter,
		PointerLimiter:     st.PointerLimiter,
		Logger:             log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		stack:      st,
		httpRouter: r,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.stack.Start(ctx); err != nil {
		return err
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if err := a.stack.Stop(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	if err := a.stack.Close(); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
