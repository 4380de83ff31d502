package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/metrics"
	authsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/auth"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/discovery"
	entsvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/entitlements"
	matchessvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/matches"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/services/quota"
	ratesvc "github.com/Drakkarus-debug/Roam-Romance-001/internal/services/rate"
	httperrors "github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/errors"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService        *authsvc.Service
	EntitlementService *entsvc.Service
	MatchService       *matchessvc.Service
	Registry           *discovery.Registry
	Gate               *quota.Gate
	SwipeLimiter       *ratesvc.Limiter
	PointerLimiter     *ratesvc.Limiter
	Logger             *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	meHandler := handlers.NewMeHandler(deps.AuthService)
	quotaHandler := handlers.NewQuotaHandler(deps.Gate, deps.EntitlementService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.EntitlementService)
	discoverHandler := handlers.NewDiscoverHandler(handlers.DiscoverDependencies{
		Registry:       deps.Registry,
		Gate:           deps.Gate,
		Tiers:          deps.EntitlementService,
		Plans:          deps.EntitlementService,
		SwipeLimiter:   deps.SwipeLimiter,
		PointerLimiter: deps.PointerLimiter,
		Logger:         deps.Logger,
	})

	r.Get("/healthz", healthHandler.Handle)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/auth/register", authHandler.Register)
		v1.Post("/auth/login", authHandler.Login)
		v1.Post("/auth/telegram", authHandler.Telegram)
		v1.Get("/subscriptions", subscriptionHandler.Plans)

		v1.Group(func(private chi.Router) {
			private.Use(AuthMiddleware(deps.AuthService, deps.Logger))

			private.Get("/me", meHandler.Handle)
			private.Get("/quota", quotaHandler.Handle)
			private.Get("/matches", matchesHandler.List)
			private.Post("/subscribe/{planID}", subscriptionHandler.Subscribe)

			private.Route("/discover", func(d chi.Router) {
				d.Post("/session", discoverHandler.Start)
				d.Get("/session", discoverHandler.State)
				d.Delete("/session", discoverHandler.Close)
				d.Post("/pointer", discoverHandler.Pointer)
				d.Post("/swipe", discoverHandler.Swipe)
				d.Post("/refill", discoverHandler.Refill)
				d.Post("/celebration/dismiss", discoverHandler.DismissCelebration)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
			Code:    "NOT_FOUND",
			Message: "route not found",
		})
	})
}
