package app

import (
	"log/slog"

	"github.com/Mehdichaaki/dashbord/internal/auth"
	"github.com/Mehdichaaki/dashbord/internal/config"
	"github.com/Mehdichaaki/dashbord/internal/events"
	"github.com/Mehdichaaki/dashbord/internal/gradebook"
	"github.com/Mehdichaaki/dashbord/internal/health"
	"github.com/Mehdichaaki/dashbord/internal/metrics"
	"github.com/Mehdichaaki/dashbord/internal/middleware"
	"github.com/Mehdichaaki/dashbord/internal/user"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the collaborators the HTTP API is built from.
type Dependencies struct {
	Config    *config.Config
	Users     user.Repository
	Entries   gradebook.Repository
	DB        health.Pinger
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	Limiter   *auth.LoginLimiter
	Proxies   *auth.TrustedProxies
}

// NewRouter builds the full API: health endpoints at the root and the
// record routes under /api.
func NewRouter(deps Dependencies) chi.Router {
	cfg := deps.Config
	log := deps.Logger

	if deps.Metrics == nil {
		deps.Metrics = metrics.NewMock()
	}
	if deps.Limiter == nil {
		deps.Limiter = auth.NewLoginLimiter(cfg.Auth.LoginWindow, cfg.Auth.LoginMaxTries)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.SecurityHeaders)
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// set before Route so the /api subrouter inherits them
	router.NotFound(middleware.NotFound)
	router.MethodNotAllowed(middleware.MethodNotAllowed)

	health.NewHandler(deps.DB, log).RegisterRoutes(router)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	protect := auth.RequireBearer(tokens, log)

	userService := user.NewService(deps.Users, deps.Publisher, log)
	userHandler := user.NewHandler(userService, log, deps.Metrics)

	authService := auth.NewService(userService, tokens)
	authHandler := auth.NewHandler(authService, deps.Limiter, deps.Proxies, log, deps.Metrics)

	gradebookService := gradebook.NewService(deps.Entries, userService, deps.Publisher, deps.Metrics, log)
	gradebookHandler := gradebook.NewHandler(gradebookService, log)

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		userHandler.RegisterRoutes(r, protect)
		gradebookHandler.RegisterRoutes(r, protect)
	})

	return router
}
