package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Mehdichaaki/dashbord/internal/auth"
	"github.com/Mehdichaaki/dashbord/internal/config"
	"github.com/Mehdichaaki/dashbord/internal/db"
	"github.com/Mehdichaaki/dashbord/internal/events"
	"github.com/Mehdichaaki/dashbord/internal/gradebook"
	"github.com/Mehdichaaki/dashbord/internal/health"
	"github.com/Mehdichaaki/dashbord/internal/logger"
	"github.com/Mehdichaaki/dashbord/internal/telemetry"
	"github.com/Mehdichaaki/dashbord/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	grpc      *health.GrpcServer
	db        *bun.DB
	publisher events.Publisher
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
}

func New(ctx context.Context) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "commit", GitCommit, "built", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	tel, err := telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	// users first: grade_entries references it
	if err := db.RunMigrations(ctx, database, (*user.User)(nil), (*gradebook.Entry)(nil)); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := tel.RegisterDB(database.DB); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	publisher, err := events.New(cfg.Events, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize event publisher, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.Nop{}
	}

	proxies, err := auth.NewTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	router := NewRouter(Dependencies{
		Config:    cfg,
		Users:     user.NewRepository(database, tel.Metrics),
		Entries:   gradebook.NewRepository(database, tel.Metrics),
		DB:        database,
		Publisher: publisher,
		Metrics:   tel.Metrics,
		Logger:    slogLogger,
		Proxies:   proxies,
	})

	app := &App{
		config:    cfg,
		router:    router,
		db:        database,
		publisher: publisher,
		telemetry: tel,
		logger:    slogLogger,
	}

	if cfg.Grpc.Port != "" {
		app.grpc = health.NewGrpcServer(slogLogger)
	}

	slogLogger.Info("application initialized successfully")

	return app, nil
}

func (a *App) Run() error {
	if a.grpc != nil {
		go func() {
			if err := a.grpc.Listen(a.config.Grpc.Port); err != nil {
				a.logger.Error("gRPC health server stopped", "error", err)
			}
		}()
	}

	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.grpc != nil {
		a.grpc.SetServing(false)
	}

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if a.grpc != nil {
		a.grpc.Stop()
	}

	if err := a.publisher.Close(); err != nil {
		a.logger.Error("event publisher close error", "error", err)
	}

	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	db.Close(a.db)

	return errors.Join(errs...)
}
